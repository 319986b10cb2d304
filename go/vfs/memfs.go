package vfs

import (
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/google/btree"

	"github.com/lunixbochs/darwincorn/go/native/enum"
)

type memNode struct {
	path   string
	mode   uint32
	data   []byte
	xattrs map[string][]byte
}

func (n *memNode) isDir() bool {
	return n.mode&enum.S_IFMT == enum.S_IFDIR
}

func nodeLess(a, b *memNode) bool {
	return a.path < b.path
}

// MemFS is an in-memory filesystem indexed by cleaned absolute path. Every
// operation, including those on open files, holds the one lock.
type MemFS struct {
	mu   sync.Mutex
	tree *btree.BTreeG[*memNode]
}

func NewMemFS() *MemFS {
	fs := &MemFS{tree: btree.NewG(16, nodeLess)}
	fs.tree.ReplaceOrInsert(&memNode{path: "/", mode: enum.S_IFDIR | 0755})
	return fs
}

// Clean makes p absolute and removes dot elements. ".." stops at /.
func Clean(p string) string {
	return path.Clean("/" + p)
}

func (fs *MemFS) get(p string) *memNode {
	n, _ := fs.tree.Get(&memNode{path: p})
	return n
}

// parent returns the directory p would live in, or the errno that stops it.
func (fs *MemFS) parent(p string) (*memNode, enum.Errno) {
	dir := path.Dir(p)
	n := fs.get(dir)
	if n == nil {
		return nil, enum.ENOENT
	}
	if !n.isDir() {
		return nil, enum.ENOTDIR
	}
	return n, 0
}

// blocked reports the ENOTDIR of a path whose ancestor is a regular file.
func (fs *MemFS) blocked(p string) enum.Errno {
	for dir := path.Dir(p); dir != "/"; dir = path.Dir(dir) {
		if n := fs.get(dir); n != nil {
			if !n.isDir() {
				return enum.ENOTDIR
			}
			return 0
		}
	}
	return 0
}

// allowed checks owner permission bits. O_EVTONLY asks for neither read
// nor write access.
func allowed(mode uint32, flags enum.OpenFlag) bool {
	if flags.Has(enum.O_EVTONLY) {
		return true
	}
	if flags.Readable() && mode&0400 == 0 {
		return false
	}
	if flags.Writable() && mode&0200 == 0 {
		return false
	}
	return true
}

// Resolve opens p. A missing path without O_CREAT is no opinion, so an
// Overlay can fall through to the next layer.
func (fs *MemFS) Resolve(p string, flags enum.OpenFlag) (Result, bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	p = Clean(p)
	n := fs.get(p)
	created := false
	if n == nil {
		if e := fs.blocked(p); e != 0 {
			return Failure(e), true
		}
		if !flags.Has(enum.O_CREAT) {
			return Result{}, false
		}
		dir, e := fs.parent(p)
		if e != 0 {
			return Failure(e), true
		}
		if dir.mode&0200 == 0 {
			return Failure(enum.EACCES), true
		}
		n = &memNode{path: p, mode: enum.S_IFREG | 0644}
		fs.tree.ReplaceOrInsert(n)
		created = true
	} else if flags.Has(enum.O_CREAT | enum.O_EXCL) {
		return Failure(enum.EEXIST), true
	}
	if n.isDir() {
		if flags.Writable() {
			return Failure(enum.EISDIR), true
		}
	} else if flags.Has(enum.O_DIRECTORY) {
		return Failure(enum.ENOTDIR), true
	}
	if !created && !allowed(n.mode, flags) {
		return Failure(enum.EACCES), true
	}
	if flags.Has(enum.O_TRUNC) && flags.Writable() {
		n.data = nil
	}
	res := Success(&memFile{fs: fs, node: n, flags: flags}, flags)
	res.Created = created
	return res, true
}

func (fs *MemFS) mkdirAll(p string, mode uint32) (*memNode, error) {
	if n := fs.get(p); n != nil {
		if !n.isDir() {
			return nil, enum.ENOTDIR
		}
		return n, nil
	}
	if p != "/" {
		if _, err := fs.mkdirAll(path.Dir(p), 0755); err != nil {
			return nil, err
		}
	}
	n := &memNode{path: p, mode: enum.S_IFDIR | mode&07777}
	fs.tree.ReplaceOrInsert(n)
	return n, nil
}

// Mkdir creates p and any missing parents. An existing directory takes mode.
func (fs *MemFS) Mkdir(p string, mode uint32) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	n, err := fs.mkdirAll(Clean(p), mode)
	if err != nil {
		return err
	}
	n.mode = enum.S_IFDIR | mode&07777
	return nil
}

// WriteFile creates or replaces a regular file, creating parents as needed.
func (fs *MemFS) WriteFile(p string, data []byte, mode uint32) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	p = Clean(p)
	if _, err := fs.mkdirAll(path.Dir(p), 0755); err != nil {
		return err
	}
	if n := fs.get(p); n != nil {
		if n.isDir() {
			return enum.EISDIR
		}
		n.data = append([]byte(nil), data...)
		n.mode = enum.S_IFREG | mode&07777
		return nil
	}
	fs.tree.ReplaceOrInsert(&memNode{path: p, mode: enum.S_IFREG | mode&07777, data: append([]byte(nil), data...)})
	return nil
}

func (fs *MemFS) SetXattr(p, name string, value []byte) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	n := fs.get(Clean(p))
	if n == nil {
		return enum.ENOENT
	}
	if n.xattrs == nil {
		n.xattrs = make(map[string][]byte)
	}
	n.xattrs[name] = append([]byte(nil), value...)
	return nil
}

// Mode returns the st_mode of p.
func (fs *MemFS) Mode(p string) (uint32, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	n := fs.get(Clean(p))
	if n == nil {
		return 0, enum.ENOENT
	}
	return n.mode, nil
}

// Remove deletes a file or an empty directory.
func (fs *MemFS) Remove(p string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	p = Clean(p)
	n := fs.get(p)
	if n == nil {
		return enum.ENOENT
	}
	if p == "/" {
		return enum.EBUSY
	}
	if n.isDir() && len(fs.children(p)) > 0 {
		return enum.ENOTEMPTY
	}
	fs.tree.Delete(n)
	return nil
}

// children lists the nodes below dir in path order.
func (fs *MemFS) children(dir string) []*memNode {
	prefix := dir
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	var out []*memNode
	fs.tree.AscendGreaterOrEqual(&memNode{path: prefix}, func(n *memNode) bool {
		if !strings.HasPrefix(n.path, prefix) {
			return false
		}
		out = append(out, n)
		return true
	})
	return out
}

// Paths lists every path in the filesystem in order.
func (fs *MemFS) Paths() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	out := make([]string, 0, fs.tree.Len())
	fs.tree.Ascend(func(n *memNode) bool {
		out = append(out, n.path)
		return true
	})
	return out
}

type memFile struct {
	fs     *MemFS
	node   *memNode
	flags  enum.OpenFlag
	off    int
	closed bool
}

func (f *memFile) Path() string {
	return f.node.path
}

func (f *memFile) Read(p []byte) (int, error) {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	if f.closed || !f.flags.Readable() {
		return 0, enum.EBADF
	}
	if f.node.isDir() {
		return 0, enum.EISDIR
	}
	if f.off >= len(f.node.data) {
		return 0, io.EOF
	}
	n := copy(p, f.node.data[f.off:])
	f.off += n
	return n, nil
}

func (f *memFile) Write(p []byte) (int, error) {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	if f.closed || !f.flags.Writable() {
		return 0, enum.EBADF
	}
	if f.flags.Has(enum.O_APPEND) {
		f.off = len(f.node.data)
	}
	if end := f.off + len(p); end > len(f.node.data) {
		grown := make([]byte, end)
		copy(grown, f.node.data)
		f.node.data = grown
	}
	n := copy(f.node.data[f.off:], p)
	f.off += n
	return n, nil
}

func (f *memFile) Close() error {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	if f.closed {
		return enum.EBADF
	}
	f.closed = true
	return nil
}

const xattrOptions = enum.XATTR_NOFOLLOW | enum.XATTR_SHOWCOMPRESSION

func (f *memFile) Listxattr(buf []byte, options int) (int, error) {
	if options&^xattrOptions != 0 {
		return -1, enum.EINVAL
	}
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	names := make([]string, 0, len(f.node.xattrs))
	size := 0
	for name := range f.node.xattrs {
		names = append(names, name)
		size += len(name) + 1
	}
	if buf == nil {
		return size, nil
	}
	if len(buf) < size {
		return -1, enum.ERANGE
	}
	sort.Strings(names)
	off := 0
	for _, name := range names {
		off += copy(buf[off:], name)
		buf[off] = 0
		off++
	}
	return size, nil
}

func (f *memFile) Chmod(mode uint32) error {
	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()
	f.node.mode = f.node.mode&enum.S_IFMT | mode&07777
	return nil
}
