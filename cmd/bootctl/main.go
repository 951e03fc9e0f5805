// Command bootctl is the host-side counterpart to the bootloader: it
// opens a real serial port and drives the wire protocol end to end
// (ping, info, erase/write/read flash, attributes, CRC, exit),
// grounded on cmd/cli/main.go's flag-based dispatch and interactive
// loop, with the network transport swapped for a real UART.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	goserial "github.com/daedaluz/goserial"
	"golang.org/x/term"

	"github.com/tock-go/bootloader/protocol"
)

const (
	defaultBaud    = 115200
	defaultTimeout = 2 * time.Second
)

func main() {
	port := flag.String("port", "", "Serial device path (required), e.g. /dev/ttyACM0")
	baud := flag.Int("baud", defaultBaud, "Baud rate")
	cmd := flag.String("cmd", "", "Single command to execute (interactive mode if empty)")
	flag.Parse()

	if *port == "" {
		printUsage()
		os.Exit(1)
	}

	if *cmd == "" && flag.NArg() > 0 {
		*cmd = flag.Arg(0)
	}

	conn, err := openPort(*port, *baud)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", *port, err)
		os.Exit(1)
	}
	defer conn.Close()

	client := &client{conn: conn}

	if *cmd != "" {
		if err := runLine(client, *cmd, flag.Args()[min(1, flag.NArg()):]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := interactive(client); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func printUsage() {
	fmt.Println("bootctl: serial bootloader control tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  bootctl -port /dev/ttyACM0 [-baud 115200] [-cmd <command>]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  ping                       Check bootloader is alive")
	fmt.Println("  info                       Print bootloader version/start address")
	fmt.Println("  erase <page>               Erase one flash page")
	fmt.Println("  write <address> <file>     Write one page's worth of data from file")
	fmt.Println("  read <address> <length>    Read a byte range and print it as hex")
	fmt.Println("  crc <address> <length>     Compute the CRC-32 of a byte range")
	fmt.Println("  getattr <index>            Print an attribute slot")
	fmt.Println("  setattr <index> <key> <value>  Set an attribute slot")
	fmt.Println("  exit                       Ask the bootloader to reset into the application")
}

// openPort opens and configures a serial port, grounded on goserial's
// Open/MakeRaw/SetAttr2 API (other_examples/.../port_linux.go.go).
func openPort(path string, baud int) (*goserial.Port, error) {
	opts := goserial.NewOptions().SetReadTimeout(defaultTimeout)
	p, err := goserial.Open(path, opts)
	if err != nil {
		return nil, err
	}
	if err := p.MakeRaw(); err != nil {
		p.Close()
		return nil, err
	}
	attrs, err := p.GetAttr2()
	if err != nil {
		p.Close()
		return nil, err
	}
	attrs.ISpeed = uint32(baud)
	attrs.OSpeed = uint32(baud)
	if err := p.SetAttr2(goserial.TCSANOW, attrs); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func interactive(c *client) error {
	fmt.Println("bootctl interactive mode. Type 'quit' to exit.")
	interactiveTerminal := term.IsTerminal(int(os.Stdin.Fd()))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		if interactiveTerminal {
			fmt.Print("> ")
		}
		if !scanner.Scan() {
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" {
			return nil
		}
		fields := strings.Fields(line)
		if err := runLine(c, fields[0], fields[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

func runLine(c *client, name string, args []string) error {
	switch name {
	case "ping":
		return c.ping()
	case "info":
		return c.info()
	case "erase":
		if len(args) != 1 {
			return fmt.Errorf("usage: erase <page>")
		}
		page, err := strconv.ParseUint(args[0], 0, 32)
		if err != nil {
			return err
		}
		return c.erasePage(uint32(page) * protocol.FlashPageSize)
	case "write":
		if len(args) != 2 {
			return fmt.Errorf("usage: write <address> <file>")
		}
		address, err := strconv.ParseUint(args[0], 0, 32)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		return c.writePage(uint32(address), data)
	case "read":
		if len(args) != 2 {
			return fmt.Errorf("usage: read <address> <length>")
		}
		address, err := strconv.ParseUint(args[0], 0, 32)
		if err != nil {
			return err
		}
		length, err := strconv.ParseUint(args[1], 0, 16)
		if err != nil {
			return err
		}
		return c.readRange(uint32(address), uint16(length))
	case "crc":
		if len(args) != 2 {
			return fmt.Errorf("usage: crc <address> <length>")
		}
		address, err := strconv.ParseUint(args[0], 0, 32)
		if err != nil {
			return err
		}
		length, err := strconv.ParseUint(args[1], 0, 32)
		if err != nil {
			return err
		}
		return c.crc(uint32(address), uint32(length))
	case "getattr":
		if len(args) != 1 {
			return fmt.Errorf("usage: getattr <index>")
		}
		index, err := strconv.ParseUint(args[0], 0, 8)
		if err != nil {
			return err
		}
		return c.getAttr(uint8(index))
	case "setattr":
		if len(args) != 3 {
			return fmt.Errorf("usage: setattr <index> <key> <value>")
		}
		index, err := strconv.ParseUint(args[0], 0, 8)
		if err != nil {
			return err
		}
		return c.setAttr(uint8(index), args[1], []byte(args[2]))
	case "exit":
		return c.exitBootloader()
	default:
		return fmt.Errorf("unknown command %q", name)
	}
}
