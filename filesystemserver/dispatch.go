package filesystemserver

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/gstbrowser/connector/filesystemserver/handler"
	"github.com/gstbrowser/connector/internal/logging"
	"github.com/gstbrowser/connector/internal/metrics"
)

// Actions understood by the connector.
const (
	ActionTree   = "tree"
	ActionFiles  = "files"
	ActionMkdir  = "mkdir"
	ActionUpload = "upload"
	ActionRename = "rename"
	ActionDelete = "delete"
	ActionCopy   = "copy"
	ActionMove   = "move"
)

// Request carries the parameters of one connector call, whatever the
// transport it arrived on.
type Request struct {
	Config string
	Action string
	Path   string

	Dir  string // mkdir
	Old  string // rename, copy, move
	New  string // rename, copy, move
	Name string // delete

	Upload *Upload
}

// Upload is the single file of an upload request.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Dispatcher resolves the configuration named by a request and runs the
// requested action on a fresh connector.
type Dispatcher struct {
	profiles handler.Profiles
}

func NewDispatcher(profiles handler.Profiles) *Dispatcher {
	return &Dispatcher{profiles: profiles}
}

// Dispatch never fails: every outcome, including an unknown action, is a
// Result.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) handler.Result {
	start := time.Now()
	log := logging.WithContext(ctx)

	result := d.dispatch(ctx, req)

	label := req.Action
	if !knownAction(label) {
		label = "unknown"
	}
	metrics.ObserveRequest(label, result.Status, time.Since(start))

	log.Debug("connector action",
		zap.String("config", req.Config),
		zap.String("action", req.Action),
		zap.String("path", req.Path),
		zap.String("status", result.Status),
		zap.Int("err", result.Err),
	)
	return result
}

func (d *Dispatcher) dispatch(ctx context.Context, req Request) handler.Result {
	if !knownAction(req.Action) {
		return handler.Failure(handler.ErrMissingAction)
	}

	cfg, err := handler.Resolve(req.Config, d.profiles)
	if err != nil {
		logging.WithContext(ctx).Error("resolving configuration failed",
			zap.String("config", req.Config), zap.Error(err))
		return handler.Failure(handler.ErrDirectoryNotFound)
	}
	c := handler.NewConnector(cfg)

	switch req.Action {
	case ActionTree:
		return c.Tree()
	case ActionFiles:
		return c.Files(req.Path)
	case ActionMkdir:
		return c.MkDir(req.Path, req.Dir)
	case ActionUpload:
		if req.Upload == nil {
			return handler.Failure(handler.ErrUpload)
		}
		return c.Upload(req.Path, req.Upload.Filename, req.Upload.Body)
	case ActionRename:
		return c.Rename(req.Path, req.Old, req.New)
	case ActionDelete:
		return c.Delete(req.Path, req.Name)
	case ActionCopy:
		return c.Copy(req.Path, req.Old, req.New)
	default:
		return c.Move(req.Path, req.Old, req.New)
	}
}

func knownAction(action string) bool {
	switch action {
	case ActionTree, ActionFiles, ActionMkdir, ActionUpload,
		ActionRename, ActionDelete, ActionCopy, ActionMove:
		return true
	}
	return false
}
