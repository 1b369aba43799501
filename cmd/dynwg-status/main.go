package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"dynwg/status"
)

func main() {
	var socketPath string
	flag.StringVar(&socketPath, "socket", "", "path to the watchdog status socket")
	flag.Parse()
	if socketPath == "" {
		fmt.Fprintln(os.Stderr, "usage: dynwg-status -socket <path>")
		os.Exit(2)
	}
	c, err := status.Dial(socketPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connecting to %s: %s\n", socketPath, err)
		os.Exit(1)
	}
	defer c.Close()
	r, err := c.Status()
	if err != nil {
		fmt.Fprintf(os.Stderr, "querying status: %s\n", err)
		os.Exit(1)
	}
	if r.Summary.FinishedAt.IsZero() {
		fmt.Println("no sweep recorded yet")
	} else {
		fmt.Printf("last sweep: %s (took %s): %d clients, %d resets, %d failures\n",
			r.Summary.FinishedAt.Format(time.RFC3339),
			r.Summary.FinishedAt.Sub(r.Summary.StartedAt).Round(time.Millisecond),
			r.Summary.Clients, r.Summary.Resets, r.Summary.Failures)
	}
	for _, o := range r.Outcomes {
		line := fmt.Sprintf("%s: host %s", o.Interface, o.Hostname)
		if o.ResolvedIP != "" {
			line += " → " + o.ResolvedIP
		}
		if o.Changed {
			line += " (changed)"
		}
		if o.Reset {
			line += " (reset)"
		}
		if o.Err != "" {
			line += " error: " + o.Err
		}
		fmt.Println(line)
	}
}
