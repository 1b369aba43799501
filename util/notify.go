package util

import (
	"net"
	"os"
)

// Notify sends a state string to the service manager's notify socket.
// Without NOTIFY_SOCKET set (i.e. outside systemd) this is a no-op.
func Notify(state string) error {
	name := os.Getenv("NOTIFY_SOCKET")
	if name == "" {
		return nil
	}
	conn, err := net.DialUnix("unixgram", nil, &net.UnixAddr{Name: name, Net: "unixgram"})
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = conn.Write([]byte(state))
	return err
}
