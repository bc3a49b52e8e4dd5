package syscon

import (
	"testing"

	"github.com/Mr-Bossman/rv32emu/internal/hart"
)

func TestIsReboot(t *testing.T) {
	if !IsReboot(hart.StatusReboot) {
		t.Fatalf("expected StatusReboot to classify as reboot")
	}
	if IsReboot(hart.Status(CodePoweroff)) {
		t.Fatalf("poweroff code must not classify as reboot")
	}
}

func TestIsPoweroff(t *testing.T) {
	if !IsPoweroff(hart.Status(CodePoweroff)) {
		t.Fatalf("expected 0x5555 to classify as poweroff")
	}
	if IsPoweroff(hart.StatusReboot) {
		t.Fatalf("reboot code must not classify as poweroff")
	}
}

func TestIsHalt(t *testing.T) {
	if IsHalt(hart.StatusContinue) || IsHalt(hart.StatusWFI) {
		t.Fatalf("StatusContinue/StatusWFI must not classify as halt")
	}
	if !IsHalt(hart.Status(CodePoweroff)) || !IsHalt(hart.StatusReboot) {
		t.Fatalf("SYSCON-derived statuses must classify as halt")
	}
	if !IsHalt(hart.Status(0x4242)) {
		t.Fatalf("an implementation-defined halt code must still classify as halt")
	}
}
