package darwin

// BSD syscall numbers, as passed in x16 on arm64 and r12 on arm.
const (
	// SYS_syscall takes the real number as its first argument.
	SYS_syscall        = 0
	SYS_read           = 3
	SYS_write          = 4
	SYS_open           = 5
	SYS_close          = 6
	SYS_chmod          = 15
	SYS_access         = 33
	SYS_fchmod         = 124
	SYS_listxattr      = 240
	SYS_flistxattr     = 241
	SYS_read_nocancel  = 396
	SYS_write_nocancel = 397
	SYS_open_nocancel  = 398
	SYS_close_nocancel = 399
	SYS_faccessat      = 466
)

// Mach traps use negative numbers in the same register.
const (
	MACH_vm_allocate   = -10
	MACH_vm_deallocate = -12
	MACH_reply_port    = -26
	MACH_thread_self   = -27
	MACH_task_self     = -28
	MACH_host_self     = -29
	MACH_msg           = -31
)

var Syscalls = map[int]string{
	SYS_read:           "read",
	SYS_write:          "write",
	SYS_open:           "open",
	SYS_close:          "close",
	SYS_chmod:          "chmod",
	SYS_access:         "access",
	SYS_fchmod:         "fchmod",
	SYS_listxattr:      "listxattr",
	SYS_flistxattr:     "flistxattr",
	SYS_read_nocancel:  "read_nocancel",
	SYS_write_nocancel: "write_nocancel",
	SYS_open_nocancel:  "open_nocancel",
	SYS_close_nocancel: "close_nocancel",
	SYS_faccessat:      "faccessat",
}

var MachTraps = map[int]string{
	MACH_vm_allocate:   "mach_vm_allocate",
	MACH_vm_deallocate: "mach_vm_deallocate",
	MACH_reply_port:    "mach_reply_port",
	MACH_thread_self:   "thread_self_trap",
	MACH_task_self:     "task_self_trap",
	MACH_host_self:     "host_self_trap",
	MACH_msg:           "mach_msg_trap",
}

// SyscallName maps a trap number to its handler name.
func SyscallName(num int) (string, bool) {
	if num < 0 {
		name, ok := MachTraps[num]
		return name, ok
	}
	name, ok := Syscalls[num]
	return name, ok
}
