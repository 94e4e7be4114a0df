//go:build linux

package platform

import (
	"fmt"

	"github.com/godbus/dbus/v5"
)

const (
	notifyDest  = "org.freedesktop.Notifications"
	notifyPath  = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyCall  = notifyDest + ".Notify"
	expireAfter = int32(5000)
)

// Notify sends a desktop notification using the Freedesktop.org notification spec.
func Notify(title, body string, opts Options) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("session bus: %w", err)
	}
	defer conn.Close()

	hints := map[string]dbus.Variant{"category": dbus.MakeVariant("transfer.complete")}
	call := conn.Object(notifyDest, notifyPath).Call(notifyCall, 0,
		AppName, uint32(0), opts.IconPath, title, body, []string{}, hints, expireAfter)
	return call.Err
}
