package vfs

import (
	"fmt"
	"sort"
	"sync"

	"mazkernel/internal/kerrors"
)

// Capacity limits.
const (
	MaxInodes    = 1024
	MaxOpenFiles = 1024
	MaxFileSize  = 1 * 1024 * 1024
)

// rootMode is rwx, the mode given to the root inode and its seed
// directories.
var rootMode = Mode{Read: true, Write: true, Execute: true}

// VFS is the in-memory filesystem: a dense inode table rooted at inode
// 0, and a fixed-capacity open-file descriptor table. One mutex guards
// every entry point's single-owner-lock model.
type VFS struct {
	mu sync.Mutex

	inodes    []*Inode // index = inode number; nil = free slot
	openFiles []*OpenFile
	nextInode int
}

// New returns a VFS with inode 0 as the root directory and the seed tree
// (/dev, /tmp, /home, /hello.txt) created best-effort.
func New() *VFS {
	v := &VFS{
		inodes:    make([]*Inode, MaxInodes),
		openFiles: make([]*OpenFile, MaxOpenFiles),
		nextInode: 1,
	}
	v.inodes[0] = newDirInode(0, rootMode)

	v.Mkdir("/dev", 0o700)
	v.Mkdir("/tmp", 0o700)
	v.Mkdir("/home", 0o700)
	v.Create("/hello.txt", 0o600)

	return v
}

func (v *VFS) allocateInode() (int, error) {
	if v.nextInode >= len(v.inodes) {
		return 0, kerrors.ErrExhausted
	}
	n := v.nextInode
	v.nextInode++
	return n, nil
}

func (v *VFS) allocateFD() (int, error) {
	for i, slot := range v.openFiles {
		if slot == nil {
			return i, nil
		}
	}
	return 0, kerrors.ErrExhausted
}

// traverse resolves parts segment by segment from the root, requiring
// every non-terminal segment to be a Directory.
func (v *VFS) traverse(parts []string) (int, error) {
	current := 0
	for _, part := range parts {
		inode := v.inodes[current]
		if inode == nil {
			return 0, kerrors.ErrNotFound
		}
		if inode.Type != Directory {
			return 0, fmt.Errorf("vfs: %w: not a directory", kerrors.ErrInvalid)
		}
		next, ok := inode.Children[part]
		if !ok {
			return 0, kerrors.ErrNotFound
		}
		current = next
	}
	return current, nil
}

// create is the shared body of Create/Mkdir: resolve parent, reject name
// collisions, allocate a new inode, link it into parent.Children.
func (v *VFS) create(path string, mode Mode, dir bool) (int, error) {
	parts := splitPath(path)
	if len(parts) == 0 {
		return 0, fmt.Errorf("vfs: %w: empty path", kerrors.ErrInvalid)
	}

	name := parts[len(parts)-1]
	parentNum, err := v.traverse(parts[:len(parts)-1])
	if err != nil {
		return 0, err
	}

	parent := v.inodes[parentNum]
	if _, exists := parent.Children[name]; exists {
		return 0, kerrors.ErrExists
	}

	num, err := v.allocateInode()
	if err != nil {
		return 0, err
	}

	var inode *Inode
	if dir {
		inode = newDirInode(num, mode)
	} else {
		inode = newFileInode(num, mode)
	}
	v.inodes[num] = inode
	parent.Children[name] = num

	return num, nil
}

// Create implements create(path, mode): a new Regular inode.
func (v *VFS) Create(path string, rawMode uint32) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.create(path, ModeFromBits(rawMode), false)
}

// Mkdir implements mkdir(path, mode): a new Directory inode.
func (v *VFS) Mkdir(path string, rawMode uint32) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.create(path, ModeFromBits(rawMode), true)
}

// Open implements open(path, flags): resolves path, allocates a
// descriptor by linear scan for the first free slot, satisfying
// internal/syscall's FileSystem interface (mode is unused — 
// open takes (path, flags), mode only matters for create semantics the
// syscall layer doesn't expose separately).
func (v *VFS) Open(path string, flags int, mode uint32) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	parts := splitPath(path)
	inodeNum, err := v.traverse(parts)
	if err != nil {
		return 0, err
	}

	fd, err := v.allocateFD()
	if err != nil {
		return 0, err
	}

	v.openFiles[fd] = &OpenFile{Inode: inodeNum, Flags: flags}
	return fd, nil
}

func (v *VFS) checkFD(fd int) (*OpenFile, error) {
	if fd < 0 || fd >= len(v.openFiles) {
		return nil, fmt.Errorf("vfs: %w: fd out of range", kerrors.ErrInvalid)
	}
	of := v.openFiles[fd]
	if of == nil {
		return nil, fmt.Errorf("vfs: %w: fd not open", kerrors.ErrInvalid)
	}
	return of, nil
}

// Close implements close(fd): clears the descriptor slot.
func (v *VFS) Close(fd int) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, err := v.checkFD(fd); err != nil {
		return err
	}
	v.openFiles[fd] = nil
	return nil
}

// Read implements read(fd, buf): requires the read bit, copies
// min(len(buf), size-offset) bytes, advances offset.
func (v *VFS) Read(fd int, buf []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	of, err := v.checkFD(fd)
	if err != nil {
		return 0, err
	}
	inode := v.inodes[of.Inode]
	if inode == nil {
		return 0, kerrors.ErrNotFound
	}
	if !inode.Mode.Read {
		return 0, kerrors.ErrPermission
	}

	remaining := len(inode.Data) - of.Offset
	if remaining < 0 {
		remaining = 0
	}
	n := len(buf)
	if n > remaining {
		n = remaining
	}

	copy(buf[:n], inode.Data[of.Offset:of.Offset+n])
	of.Offset += n
	return n, nil
}

// Write implements write(fd, buf): requires the write bit, grows data to
// offset+len(buf) (zero-filling gaps), rejects growth past MaxFileSize,
// advances offset.
func (v *VFS) Write(fd int, buf []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	of, err := v.checkFD(fd)
	if err != nil {
		return 0, err
	}
	inode := v.inodes[of.Inode]
	if inode == nil {
		return 0, kerrors.ErrNotFound
	}
	if !inode.Mode.Write {
		return 0, kerrors.ErrPermission
	}

	end := of.Offset + len(buf)
	if end > MaxFileSize {
		return 0, kerrors.ErrExhausted
	}
	if end > len(inode.Data) {
		grown := make([]byte, end)
		copy(grown, inode.Data)
		inode.Data = grown
	}

	copy(inode.Data[of.Offset:end], buf)
	of.Offset = end
	return len(buf), nil
}

// ListDir implements list_dir(path): ordered child names of the resolved
// directory.
func (v *VFS) ListDir(path string) ([]string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	parts := splitPath(path)
	num, err := v.traverse(parts)
	if err != nil {
		return nil, err
	}
	inode := v.inodes[num]
	if inode.Type != Directory {
		return nil, fmt.Errorf("vfs: %w: not a directory", kerrors.ErrInvalid)
	}

	names := make([]string, 0, len(inode.Children))
	for name := range inode.Children {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CreateFile is a convenience wrapper over Create+Open+Write for callers
// that want to seed file content in one call; it is not itself a syscall.
// New seeds /hello.txt with Create, not with this wrapper.
func (v *VFS) CreateFile(path string, rawMode uint32, content []byte) error {
	if _, err := v.Create(path, rawMode); err != nil {
		return err
	}
	fd, err := v.Open(path, 0, 0)
	if err != nil {
		return err
	}
	defer v.Close(fd)

	_, err = v.Write(fd, content)
	return err
}
