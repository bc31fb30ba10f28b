package handler

import "encoding/json"

const (
	StatusOK  = "OK"
	StatusErr = "ERR"
)

// Error codes reported to the browser client. The numbers are part of the
// wire protocol and must not change.
const (
	ErrMissingAction     = 3
	ErrDirectoryNotFound = 4
	ErrFileNotFound      = 6
	ErrInvalidParameter  = 7

	ErrMkdir       = 10
	ErrMkdirExists = 11

	ErrRename = 20

	ErrUpload           = 30
	ErrUploadFileSize   = 31
	ErrUploadFileExists = 32

	ErrDelete            = 40
	ErrDeleteNotEmptyDir = 41

	ErrCopy            = 50
	ErrCopyFileExists  = 51
	ErrCopyDirNotFound = 52
)

// Kind is the entry type reported in a FileDescriptor.
type Kind string

const (
	KindFile    Kind = "file"
	KindDir     Kind = "dir"
	KindUnknown Kind = "unknown"
)

// ImageSize is an image's pixel dimensions, encoded as [width, height].
type ImageSize [2]int

// FileDescriptor is the cached metadata of one directory entry.
type FileDescriptor struct {
	Name      string     `json:"name"`
	Type      Kind       `json:"type"`
	Size      *int64     `json:"size"`
	Date      string     `json:"date"`
	ImgSize   *ImageSize `json:"imgsize"`
	Thumbnail *string    `json:"thumbnail"`
}

// TreeNode represents a folder in the folder tree
type TreeNode struct {
	Name     string      `json:"name"`
	Children []*TreeNode `json:"children,omitempty"`
}

// Result is the outcome of one connector operation. Files and Tree are
// only sent to the client when they are non-nil, so an empty directory
// still produces "files": [].
type Result struct {
	Status string           `json:"status"`
	Err    int              `json:"err,omitempty"`
	Files  []FileDescriptor `json:"files,omitempty"`
	Tree   []*TreeNode      `json:"tree,omitempty"`
}

func (r Result) MarshalJSON() ([]byte, error) {
	out := map[string]any{"status": r.Status}
	if r.Err > 0 {
		out["err"] = r.Err
	}
	if r.Files != nil {
		out["files"] = r.Files
	}
	if r.Tree != nil {
		out["tree"] = r.Tree
	}
	return json.Marshal(out)
}

// OK reports whether the operation succeeded.
func (r Result) OK() bool {
	return r.Status == StatusOK
}

// Failure builds an error result carrying code.
func Failure(code int) Result {
	return Result{Status: StatusErr, Err: code}
}

func success(files []FileDescriptor, tree []*TreeNode) Result {
	return Result{Status: StatusOK, Files: files, Tree: tree}
}
