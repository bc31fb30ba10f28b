package handler

// Files returns the cached listing of the directory at path.
func (c *Connector) Files(path string) Result {
	dir, ok := c.resolve(path)
	if !ok || !isDir(dir) {
		return Failure(ErrDirectoryNotFound)
	}
	return success(c.listing(dir), nil)
}
