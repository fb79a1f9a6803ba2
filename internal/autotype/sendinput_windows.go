//go:build windows

package autotype

import (
	"fmt"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

const (
	inputKeyboard    = 1
	keyeventfKeyUp   = 0x0002
	keyeventfUnicode = 0x0004

	vkTab    = 0x09
	vkReturn = 0x0D
)

type keyboardInput struct {
	WVK         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// mouseInput is MOUSEINPUT, the largest member of the INPUT union. It is
// only used to give the union its size and alignment on every GOARCH
// (40 bytes for INPUT on 64-bit, 28 on 386).
type mouseInput struct {
	Dx          int32
	Dy          int32
	MouseData   uint32
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// input mirrors INPUT. The union is typed as its largest member; keyboard
// events are written into it through keyInput.
type input struct {
	Type  uint32
	union mouseInput
}

func keyInput(vk, scan uint16, flags uint32) input {
	in := input{Type: inputKeyboard}
	*in.keyboard() = keyboardInput{WVK: vk, WScan: scan, DwFlags: flags}
	return in
}

func (in *input) keyboard() *keyboardInput {
	return (*keyboardInput)(unsafe.Pointer(&in.union))
}

// SendInput injects keystrokes with the Win32 SendInput API.
type SendInput struct{}

// NewSystem returns the platform injector.
func NewSystem() Injector {
	return SendInput{}
}

// TypeText sends each UTF-16 unit as a KEYEVENTF_UNICODE down/up pair, so
// the active keyboard layout does not matter. Surrogate pairs are sent as
// two units, which is what the receiving window expects.
func (SendInput) TypeText(s string) error {
	units := utf16.Encode([]rune(s))
	if len(units) == 0 {
		return nil
	}
	ins := make([]input, 0, len(units)*2)
	for _, u := range units {
		ins = append(ins,
			keyInput(0, u, keyeventfUnicode),
			keyInput(0, u, keyeventfUnicode|keyeventfKeyUp),
		)
	}
	return send(ins)
}

// PressKey taps the virtual key for k.
func (SendInput) PressKey(k Key) error {
	var vk uint16
	switch k {
	case KeyNextField:
		vk = vkTab
	case KeySubmit:
		vk = vkReturn
	default:
		return fmt.Errorf("unsupported key %v", k)
	}
	return send([]input{
		keyInput(vk, 0, 0),
		keyInput(vk, 0, keyeventfKeyUp),
	})
}

func send(ins []input) error {
	ret, _, err := procSendInput.Call(
		uintptr(len(ins)),
		uintptr(unsafe.Pointer(&ins[0])),
		unsafe.Sizeof(input{}),
	)
	if int(ret) != len(ins) {
		return fmt.Errorf("SendInput inserted %d of %d events: %w", ret, len(ins), err)
	}
	return nil
}
