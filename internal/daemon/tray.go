//go:build windows
// +build windows

package daemon

import (
	_ "embed"
	"fmt"
	"syscall"
	"unsafe"

	"fyne.io/systray"
	"go.uber.org/zap"

	"github.com/username/salary-ticker/internal/earnings"
	"github.com/username/salary-ticker/internal/report"
)

//go:embed icon.ico
var trayIcon []byte

var (
	user32      = syscall.NewLazyDLL("user32.dll")
	messageBoxW = user32.NewProc("MessageBoxW")
)

const (
	MB_OK              = 0x00000000
	MB_ICONINFORMATION = 0x00000040
)

// TrayApp represents system tray application
type TrayApp struct {
	daemon *Daemon
	logger *zap.Logger
	quit   chan struct{}
}

// NewTrayApp creates a new system tray application
func NewTrayApp(daemon *Daemon, logger *zap.Logger) (*TrayApp, error) {
	return &TrayApp{
		daemon: daemon,
		logger: logger,
		quit:   make(chan struct{}),
	}, nil
}

// Run starts the system tray application (blocks until Quit)
func (t *TrayApp) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *TrayApp) onReady() {
	systray.SetIcon(trayIcon)
	systray.SetTitle("¥")
	systray.SetTooltip("Salary Ticker")

	mRefresh := systray.AddMenuItem("Refresh holidays", "Fetch the holiday calendar again")
	systray.AddSeparator()
	mStatus := systray.AddMenuItem("Status", "Show today's earnings")
	systray.AddSeparator()
	mQuit := systray.AddMenuItem("Quit", "Exit the application")

	// Start tick loop in background
	go t.daemon.runLoop()

	go func() {
		for {
			select {
			case <-mRefresh.ClickedCh:
				t.logger.Info("Refresh clicked from tray")
				go t.daemon.RefreshNow()
			case <-mStatus.ClickedCh:
				t.logger.Info("Status clicked from tray")
				t.showStatus()
			case <-mQuit.ClickedCh:
				t.logger.Info("Quit clicked from tray")
				t.daemon.Stop()
				systray.Quit()
				return
			case <-t.quit:
				systray.Quit()
				return
			}
		}
	}()
}

func (t *TrayApp) onExit() {
	t.logger.Info("System tray exited")
}

// Stop stops the system tray application
func (t *TrayApp) Stop() {
	select {
	case <-t.quit:
	default:
		close(t.quit)
	}
}

// Update shows the latest results in the tooltip
func (t *TrayApp) Update(res earnings.Results) {
	f := t.daemon.formatter
	systray.SetTooltip(fmt.Sprintf("Today %s (%s)\nOff work: %s",
		f.Money(res.TodayEarnings),
		f.Percent(res.TodayProgress),
		report.WorkEnd(res.TimeUntilWorkEnd)))
}

// ShowNotification shows a notification (Windows only)
func (t *TrayApp) ShowNotification(title, message string) {
	// fyne.io/systray doesn't have built-in notification support
	t.logger.Info("Notification", zap.String("title", title), zap.String("message", message))
}

// showStatus shows the current results in a message box
func (t *TrayApp) showStatus() {
	res, ok := t.daemon.Last()
	if !ok {
		showMessageBox("Salary Ticker", "No results yet")
		return
	}

	message := fmt.Sprintf("Today: %s (%s)\nWeek: %s\nMonth: %s\nOff work: %s\nNext holiday: %s",
		t.daemon.formatter.Money(res.TodayEarnings),
		t.daemon.formatter.Percent(res.TodayProgress),
		t.daemon.formatter.Money(res.WeekEarnings),
		t.daemon.formatter.Money(res.MonthEarnings),
		report.WorkEnd(res.TimeUntilWorkEnd),
		report.NextHoliday(res.TimeUntilNextHoliday, res.Calendar.Loaded))

	showMessageBox("Salary Ticker", message)
}

func showMessageBox(title, message string) {
	titlePtr, _ := syscall.UTF16PtrFromString(title)
	messagePtr, _ := syscall.UTF16PtrFromString(message)
	messageBoxW.Call(
		0,
		uintptr(unsafe.Pointer(messagePtr)),
		uintptr(unsafe.Pointer(titlePtr)),
		uintptr(MB_OK|MB_ICONINFORMATION),
	)
}
