//go:build linux

package minilog

import (
	"log/syslog"
)

// AddSyslog adds a syslog writer by connecting to address raddr on the
// specified network. Events are logged with the given tag. Calling more
// than once overwrites the existing syslog writer. If network == "local",
// log to the local syslog daemon.
func AddSyslog(network, raddr, tag string, level Level) error {
	var w *syslog.Writer
	var err error

	priority := syslog.LOG_INFO | syslog.LOG_DAEMON

	if network == "local" {
		w, err = syslog.New(priority, tag)
	} else {
		w, err = syslog.Dial(network, raddr, priority, tag)
	}
	if err != nil {
		return err
	}

	AddLogger("syslog", w, level, false)
	return nil
}
