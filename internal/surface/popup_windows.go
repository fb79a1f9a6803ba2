//go:build windows

package surface

import (
	"context"
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/hpungsan/easypass/internal/autotype"
	"github.com/hpungsan/easypass/internal/picker"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procCreatePopupMenu     = user32.NewProc("CreatePopupMenu")
	procAppendMenuW         = user32.NewProc("AppendMenuW")
	procDestroyMenu         = user32.NewProc("DestroyMenu")
	procTrackPopupMenuEx    = user32.NewProc("TrackPopupMenuEx")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
	procPostMessageW        = user32.NewProc("PostMessageW")
	procPeekMessageW        = user32.NewProc("PeekMessageW")
	procRegisterClassExW    = user32.NewProc("RegisterClassExW")
	procCreateWindowExW     = user32.NewProc("CreateWindowExW")
	procDestroyWindow       = user32.NewProc("DestroyWindow")
	procDefWindowProcW      = user32.NewProc("DefWindowProcW")
	procGetModuleHandleW    = kernel32.NewProc("GetModuleHandleW")
)

const (
	mfString = 0x0000
	mfGrayed = 0x0001
	mfPopup  = 0x0010

	tpmRightButton = 0x0002
	tpmNoNotify    = 0x0080
	tpmReturnCmd   = 0x0100

	wmNull       = 0x0000
	wmCancelMode = 0x001F

	pmRemove = 0x0001

	wsPopup = 0x80000000

	wsExToolWindow = 0x00000080
	wsExTopmost    = 0x00000008

	className = "EasyPassPickerOwner"
)

type wndClassEx struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   windows.Handle
	Icon       windows.Handle
	Cursor     windows.Handle
	Background windows.Handle
	MenuName   *uint16
	ClassName  *uint16
	IconSm     windows.Handle
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

// Popup shows sessions as a native nested popup menu owned by a hidden
// window. Every method except the context plumbing runs on the UI thread.
type Popup struct {
	hwnd windows.Handle
}

// NewSystem returns the native surface.
func NewSystem() picker.Surface {
	return &Popup{}
}

// Close destroys the owner window. Call on the UI thread.
func Close(s picker.Surface) {
	if p, ok := s.(*Popup); ok && p.hwnd != 0 {
		procDestroyWindow.Call(uintptr(p.hwnd))
		p.hwnd = 0
	}
}

type leaf struct {
	item   picker.Item
	action autotype.Action
}

// Show tracks the menu at the session anchor until the user picks a leaf,
// clicks elsewhere, or ctx is done.
func (p *Popup) Show(ctx context.Context, s picker.Session, cb picker.Callbacks) error {
	if ctx.Err() != nil {
		cb.Dismiss()
		return nil
	}
	if err := p.ensureWindow(); err != nil {
		return err
	}

	menu, leaves, err := buildMenu(s)
	if err != nil {
		return err
	}
	defer procDestroyMenu.Call(menu)

	// A cancel posted for an earlier session must not close this one.
	p.drainCancel()

	posted := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		procPostMessageW.Call(uintptr(p.hwnd), wmCancelMode, 0, 0)
		close(posted)
	})

	// Without this the menu does not close when the user clicks outside it.
	procSetForegroundWindow.Call(uintptr(p.hwnd))
	cmd, _, _ := procTrackPopupMenuEx.Call(
		menu,
		tpmReturnCmd|tpmRightButton|tpmNoNotify,
		uintptr(s.Anchor.X),
		uintptr(s.Anchor.Y),
		uintptr(p.hwnd),
		0,
	)
	procPostMessageW.Call(uintptr(p.hwnd), wmNull, 0, 0)

	if !stop() {
		<-posted
	}

	l, ok := leaves[cmd]
	if cmd == 0 || !ok {
		cb.Dismiss()
		return nil
	}
	choose(cb, l.item, l.action)
	return nil
}

func (p *Popup) ensureWindow() error {
	if p.hwnd != 0 {
		return nil
	}

	instance, _, _ := procGetModuleHandleW.Call(0)
	name, err := windows.UTF16PtrFromString(className)
	if err != nil {
		return err
	}

	wc := wndClassEx{
		WndProc:   procDefWindowProcW.Addr(),
		Instance:  windows.Handle(instance),
		ClassName: name,
	}
	wc.Size = uint32(unsafe.Sizeof(wc))
	// Registering twice fails with ERROR_CLASS_ALREADY_EXISTS, which is fine.
	procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc)))

	hwnd, _, err := procCreateWindowExW.Call(
		wsExToolWindow|wsExTopmost,
		uintptr(unsafe.Pointer(name)),
		uintptr(unsafe.Pointer(name)),
		wsPopup,
		0, 0, 0, 0,
		0, 0, instance, 0,
	)
	if hwnd == 0 {
		return fmt.Errorf("CreateWindowExW: %w", err)
	}
	p.hwnd = windows.Handle(hwnd)
	return nil
}

func (p *Popup) drainCancel() {
	var m msg
	for {
		r, _, _ := procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), uintptr(p.hwnd), wmCancelMode, wmCancelMode, pmRemove)
		if r == 0 {
			return
		}
	}
}

// buildMenu creates group → credential → leaf popups. Command ids start
// at 1; TrackPopupMenuEx returns 0 for "nothing chosen".
func buildMenu(s picker.Session) (uintptr, map[uintptr]leaf, error) {
	root, _, err := procCreatePopupMenu.Call()
	if root == 0 {
		return 0, nil, fmt.Errorf("CreatePopupMenu: %w", err)
	}

	leaves := make(map[uintptr]leaf)
	next := uintptr(1)

	if len(s.Groups) == 0 {
		appendItem(root, mfString|mfGrayed, 0, "(no credentials)")
		return root, leaves, nil
	}

	for _, g := range s.Groups {
		groupMenu, _, _ := procCreatePopupMenu.Call()
		for _, it := range g.Items {
			itemMenu, _, _ := procCreatePopupMenu.Call()
			for _, action := range it.Leaves {
				appendItem(itemMenu, mfString, next, action.String())
				leaves[next] = leaf{item: it, action: action}
				next++
			}
			appendItem(groupMenu, mfPopup, itemMenu, it.Name)
		}
		appendItem(root, mfPopup, groupMenu, g.Name)
	}
	return root, leaves, nil
}

func appendItem(menu uintptr, flags uint32, id uintptr, text string) {
	// A single & marks a mnemonic; double it to show the character.
	label, err := windows.UTF16PtrFromString(strings.ReplaceAll(text, "&", "&&"))
	if err != nil {
		return
	}
	procAppendMenuW.Call(menu, uintptr(flags), id, uintptr(unsafe.Pointer(label)))
}
