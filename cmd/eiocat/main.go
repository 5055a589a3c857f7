// Command eiocat is a small interactive smoke client for an Engine.IO v3
// long-polling server: it connects, echoes each stdin line as an outbound
// message, and prints inbound connect/message/disconnect events. Mirrors
// the source project's examples/src/bin/echo.rs.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/PhilippGackstatter/engineio/client"
	"github.com/PhilippGackstatter/engineio/packet"
)

type stdoutHandler struct{}

func (stdoutHandler) OnConnect() {
	fmt.Println("connect")
}

func (stdoutHandler) OnMessage(data packet.Data) {
	if data.IsBinary {
		fmt.Printf("%v\n", data.Binary)
		return
	}
	fmt.Println(data.Text)
}

func (stdoutHandler) OnDisconnect() {
	fmt.Println("disconnect")
}

func main() {
	url := flag.String("url", "http://localhost:8080/engine.io/", "Engine.IO server base URL")
	timeout := flag.Duration("timeout", 10*time.Second, "per-request HTTP timeout")
	verbose := flag.Bool("v", false, "enable debug logging of HTTP round trips")
	flag.Parse()

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "building logger: %v\n", err)
			os.Exit(1)
		}
		logger = l
	}

	c, err := client.Connect(*url, stdoutHandler{}, client.WithRequestTimeout(*timeout), client.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Type something...")
	scanner := bufio.NewScanner(os.Stdin)
	go func() {
		for scanner.Scan() {
			c.Emit(packet.TextData(scanner.Text()))
		}
		c.Close()
	}()

	if err := c.Join(); err != nil {
		fmt.Fprintf(os.Stderr, "session ended with error: %v\n", err)
		os.Exit(1)
	}
}
