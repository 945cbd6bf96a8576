package gdbstub

import "fmt"

// registerInfo describes one slot of the 38-word register snapshot for the
// qRegisterInfo command: GDB identifies registers by name, bit width,
// encoding, and an optional "generic" role (pc, sp, ra, ...) it uses to
// drive its own UI without needing MIPS-specific knowledge.
type registerInfo struct {
	name    string
	bitsize int
	generic string // "" if this register has no generic role
}

var registerInfoTable = [38]registerInfo{
	{"zero", 32, ""}, {"at", 32, ""}, {"v0", 32, ""}, {"v1", 32, ""},
	{"a0", 32, "arg1"}, {"a1", 32, "arg2"}, {"a2", 32, "arg3"}, {"a3", 32, "arg4"},
	{"t0", 32, ""}, {"t1", 32, ""}, {"t2", 32, ""}, {"t3", 32, ""},
	{"t4", 32, ""}, {"t5", 32, ""}, {"t6", 32, ""}, {"t7", 32, ""},
	{"s0", 32, ""}, {"s1", 32, ""}, {"s2", 32, ""}, {"s3", 32, ""},
	{"s4", 32, ""}, {"s5", 32, ""}, {"s6", 32, ""}, {"s7", 32, ""},
	{"t8", 32, ""}, {"t9", 32, ""}, {"k0", 32, ""}, {"k1", 32, ""},
	{"gp", 32, ""}, {"sp", 32, "sp"}, {"fp", 32, "fp"}, {"ra", 32, "ra"},
	{"status", 32, ""}, {"lo", 32, ""}, {"hi", 32, ""},
	{"badvaddr", 32, ""}, {"cause", 32, ""}, {"pc", 32, "pc"},
}

// qRegisterInfoReply formats the qRegisterInfo<hex n> reply for register
// idx, or returns "" if idx is out of range (Session.registerInfo then
// replies E45).
func qRegisterInfoReply(idx int) string {
	if idx < 0 || idx >= len(registerInfoTable) {
		return ""
	}
	info := registerInfoTable[idx]
	reply := fmt.Sprintf("name:%s;bitsize:%d;offset:%d;encoding:uint;format:hex;set:General Purpose Registers;",
		info.name, info.bitsize, idx*4)
	if info.generic != "" {
		reply += fmt.Sprintf("generic:%s;", info.generic)
	}
	return reply
}
