package storage

// WriteResult describes one artifact persisted under a reference directory.
type WriteResult struct {
	path     string
	filename string
	hash     string
	hashAlgo string
	size     int64
}

func NewWriteResult(
	path string,
	filename string,
	hash string,
	hashAlgo string,
	size int64,
) WriteResult {
	return WriteResult{
		path:     path,
		filename: filename,
		hash:     hash,
		hashAlgo: hashAlgo,
		size:     size,
	}
}

func (w *WriteResult) Path() string {
	return w.path
}

// Filename is the name actually used, after sanitizing and collision
// suffixing.
func (w *WriteResult) Filename() string {
	return w.filename
}

func (w *WriteResult) Hash() string {
	return w.hash
}

func (w *WriteResult) HashAlgo() string {
	return w.hashAlgo
}

func (w *WriteResult) Size() int64 {
	return w.size
}
