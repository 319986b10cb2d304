package enum

// file type bits of st_mode
const (
	S_IFMT   = 0170000
	S_IFIFO  = 0010000
	S_IFCHR  = 0020000
	S_IFDIR  = 0040000
	S_IFBLK  = 0060000
	S_IFREG  = 0100000
	S_IFLNK  = 0120000
	S_IFSOCK = 0140000
)

// access(2) modes
const (
	F_OK = 0
	X_OK = 1
	W_OK = 2
	R_OK = 4
)

// *at(2) directory fd meaning the current directory
const AT_FDCWD = -2

// listxattr(2) options
const (
	XATTR_NOFOLLOW        = 0x0001
	XATTR_SHOWCOMPRESSION = 0x0020
)
