package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"i2creg/core"
	"i2creg/host/master"
	"i2creg/host/serial"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device of the USB-I2C bridge")
	baud    = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	addr    = flag.Uint("addr", 0x2A, "7-bit bus address of the register target")
	verbose = flag.Bool("verbose", false, "Enable verbose output")
)

func main() {
	flag.Parse()

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	fmt.Printf("Connecting to bridge on %s...\n", *device)
	port, err := serial.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer port.Close()

	m := master.New(port)
	target := uint8(*addr)

	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]

		switch cmd {
		case "quit", "exit", "q":
			fmt.Println("Goodbye!")
			return

		case "help", "?":
			printHelp()

		case "get":
			reg := core.GetVoltageReg
			if len(parts) > 1 {
				r, err := parseByte(parts[1])
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					continue
				}
				reg = r
			}
			doGet(m, target, reg)

		case "set":
			if len(parts) < 2 {
				fmt.Println("Usage: set <value> [reg]")
				continue
			}
			v, err := strconv.ParseUint(parts[1], 0, 16)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: bad value %q: %v\n", parts[1], err)
				continue
			}
			reg := core.SetVoltageReg
			if len(parts) > 2 {
				r, err := parseByte(parts[2])
				if err != nil {
					fmt.Fprintf(os.Stderr, "Error: %v\n", err)
					continue
				}
				reg = r
			}
			doSet(m, target, reg, uint16(v))

		default:
			fmt.Printf("Unknown command: %s (type 'help' for available commands)\n", cmd)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  help              - Show this help message")
	fmt.Println("  get [reg]         - Read a register (default 0x08, the voltage register)")
	fmt.Println("  set <value> [reg] - Write a 16-bit value (default reg 0x09)")
	fmt.Println("  quit/exit/q       - Exit the program")
	fmt.Println()
}

func parseByte(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("bad register %q: %w", s, err)
	}
	return uint8(v), nil
}

func doGet(m *master.Master, target, reg uint8) {
	v, err := m.GetRegister(target, reg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	if v == core.Sentinel {
		fmt.Printf("reg 0x%02X: no value (sentinel)\n", reg)
		return
	}
	if *verbose {
		fmt.Printf("reg 0x%02X = %d (0x%04X, wire bytes %02X %02X)\n", reg, v, v, byte(v>>8), byte(v))
		return
	}
	fmt.Printf("reg 0x%02X = %d\n", reg, v)
}

func doSet(m *master.Master, target, reg uint8, v uint16) {
	if err := m.SetRegister(target, reg, v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	fmt.Printf("reg 0x%02X <- %d\n", reg, v)
}
