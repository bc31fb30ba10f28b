package handler

import (
	"os"
	"path/filepath"
)

// Tree returns the folder tree of the whole base directory. The tree is
// computed on every call and never cached.
func (c *Connector) Tree() Result {
	if !isDir(c.cfg.BaseDir) {
		return Failure(ErrDirectoryNotFound)
	}
	return success(nil, c.tree())
}

func (c *Connector) tree() []*TreeNode {
	root := &TreeNode{
		Name:     filepath.Base(c.cfg.BaseDir),
		Children: c.subTree(c.cfg.BaseDir),
	}
	return []*TreeNode{root}
}

// subTree lists the directories below dir in directory-listing order.
// Symlinked directories are not followed so link cycles cannot recurse.
func (c *Connector) subTree(dir string) []*TreeNode {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var nodes []*TreeNode
	for _, entry := range entries {
		if !entry.IsDir() || c.hidden.match(entry.Name()) {
			continue
		}
		nodes = append(nodes, &TreeNode{
			Name:     entry.Name(),
			Children: c.subTree(filepath.Join(dir, entry.Name())),
		})
	}
	return nodes
}
