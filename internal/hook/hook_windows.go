//go:build windows

package hook

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/hpungsan/easypass/internal/errors"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
	procGetCursorPos        = user32.NewProc("GetCursorPos")
	procGetCurrentThreadId  = kernel32.NewProc("GetCurrentThreadId")
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	wmQuit        = 0x0012
	wmKeyDown     = 0x0100
	wmKeyUp       = 0x0101
	wmSysKeyDown  = 0x0104
	wmSysKeyUp    = 0x0105
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208

	vkShift    = 0x10
	vkControl  = 0x11
	vkMenu     = 0x12
	vkLShift   = 0xA0
	vkRShift   = 0xA1
	vkLControl = 0xA2
	vkRControl = 0xA3
	vkLMenu    = 0xA4
	vkRMenu    = 0xA5

	llmhfInjected = 0x00000001
)

type kbdllHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type msllHookStruct struct {
	Pt          point
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type point struct {
	X, Y int32
}

type msg struct {
	Hwnd    windows.Handle
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

// System installs WH_KEYBOARD_LL and WH_MOUSE_LL on a dedicated OS thread
// that pumps its own message loop, as low-level hooks require.
type System struct {
	Modifier string

	mu        sync.Mutex
	installed bool
	threadID  uint32
	done      chan struct{}

	// keep callbacks reachable for the lifetime of the hooks
	keyboardProc uintptr
	mouseProc    uintptr
}

// NewSystem returns the platform hook for the given trigger modifier.
func NewSystem(modifier string) *System {
	return &System{Modifier: strings.ToLower(modifier)}
}

// Install starts the hook thread and waits until both hooks are set.
func (s *System) Install(m *Monitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.installed {
		return nil
	}

	matches := modifierKeys(s.Modifier)
	ready := make(chan error, 1)
	s.done = make(chan struct{})

	go s.run(m, matches, ready)

	if err := <-ready; err != nil {
		return errors.NewHookInstallFailed(err)
	}
	s.installed = true
	return nil
}

func (s *System) run(m *Monitor, matches func(uint32) bool, ready chan<- error) {
	// Low-level hooks are delivered to the installing thread's message loop.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(s.done)

	var kbHook, mouseHook uintptr

	s.keyboardProc = windows.NewCallback(func(nCode, wParam, lParam uintptr) uintptr {
		if int32(nCode) >= 0 {
			kb := (*kbdllHookStruct)(unsafe.Pointer(lParam))
			if matches(kb.VkCode) {
				switch wParam {
				case wmKeyDown, wmSysKeyDown:
					m.OnModifierDown(kb.VkCode)
				case wmKeyUp, wmSysKeyUp:
					m.OnModifierUp(kb.VkCode)
				}
			}
		}
		r, _, _ := procCallNextHookEx.Call(kbHook, nCode, wParam, lParam)
		return r
	})

	s.mouseProc = windows.NewCallback(func(nCode, wParam, lParam uintptr) uintptr {
		if int32(nCode) >= 0 {
			ms := (*msllHookStruct)(unsafe.Pointer(lParam))
			// Our own injected input never triggers.
			if ms.Flags&llmhfInjected == 0 {
				ev := PointerEvent{Position: Point{X: ms.Pt.X, Y: ms.Pt.Y}}
				ev.Button, ev.Down = decodeButton(wParam)
				if m.HandlePointer(ev) == Swallow {
					return 1
				}
			}
		}
		r, _, _ := procCallNextHookEx.Call(mouseHook, nCode, wParam, lParam)
		return r
	})

	tid, _, _ := procGetCurrentThreadId.Call()
	s.threadID = uint32(tid)

	h, _, err := procSetWindowsHookExW.Call(whKeyboardLL, s.keyboardProc, 0, 0)
	if h == 0 {
		ready <- fmt.Errorf("SetWindowsHookExW(WH_KEYBOARD_LL): %w", err)
		return
	}
	kbHook = h

	h, _, err = procSetWindowsHookExW.Call(whMouseLL, s.mouseProc, 0, 0)
	if h == 0 {
		procUnhookWindowsHookEx.Call(kbHook)
		ready <- fmt.Errorf("SetWindowsHookExW(WH_MOUSE_LL): %w", err)
		return
	}
	mouseHook = h

	ready <- nil

	var ms msg
	for {
		r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&ms)), 0, 0, 0)
		// 0 is WM_QUIT, -1 is an error; both end the loop
		if int32(r) <= 0 {
			break
		}
	}

	procUnhookWindowsHookEx.Call(mouseHook)
	procUnhookWindowsHookEx.Call(kbHook)
}

// Uninstall asks the hook thread to unhook and exit, then waits for it.
func (s *System) Uninstall() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.installed {
		return nil
	}
	s.installed = false

	r, _, err := procPostThreadMessageW.Call(uintptr(s.threadID), wmQuit, 0, 0)
	if r == 0 {
		return fmt.Errorf("PostThreadMessageW(WM_QUIT): %w", err)
	}
	<-s.done
	return nil
}

// CursorPos reads the current cursor position.
func CursorPos() (Point, bool) {
	var pt point
	r, _, _ := procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	if r == 0 {
		return Point{}, false
	}
	return Point{X: pt.X, Y: pt.Y}, true
}

func decodeButton(wParam uintptr) (Button, bool) {
	switch wParam {
	case wmLButtonDown:
		return ButtonPrimary, true
	case wmLButtonUp:
		return ButtonPrimary, false
	case wmRButtonDown:
		return ButtonSecondary, true
	case wmRButtonUp:
		return ButtonSecondary, false
	case wmMButtonDown:
		return ButtonMiddle, true
	case wmMButtonUp:
		return ButtonMiddle, false
	}
	return ButtonNone, false
}

func modifierKeys(modifier string) func(uint32) bool {
	var keys []uint32
	switch modifier {
	case "alt":
		keys = []uint32{vkMenu, vkLMenu, vkRMenu}
	case "shift":
		keys = []uint32{vkShift, vkLShift, vkRShift}
	default:
		keys = []uint32{vkControl, vkLControl, vkRControl}
	}
	return func(vk uint32) bool {
		for _, k := range keys {
			if vk == k {
				return true
			}
		}
		return false
	}
}
