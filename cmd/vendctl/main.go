// cmd/vendctl/main.go

// vendctl is the operator CLI: a Modbus RTU master poking the running vendd
// controller over a serial line.
//
//	vendctl -port /dev/ttyUSB0 status
//	vendctl -port /dev/ttyUSB0 price 0 50
//	vendctl -port /dev/ttyUSB0 vend 0
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/goburrow/modbus"

	"github.com/yashaswikaran/ModVend/internal/registers"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage: vendctl [flags] <command>

commands:
  status                 read and decode the status register
  read <addr>            read one holding register
  write <addr> <value>   write one holding register
  price <id> [value]     get or set an item price
  stock <id> [value]     get or set an item stock count
  select <id>            select an item
  dispense               trigger payment verification for the selected item
  vend <id>              select an item and trigger in one go

flags:`)
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	port := flag.String("port", "/dev/ttyUSB0", "serial device of the controller")
	baud := flag.Int("baud", 9600, "baud rate")
	slave := flag.Uint("slave", 1, "slave address of the controller")
	timeout := flag.Duration("timeout", 2*time.Second, "request timeout")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
	}

	handler := modbus.NewRTUClientHandler(*port)
	handler.BaudRate = *baud
	handler.DataBits = 8
	handler.Parity = "N"
	handler.StopBits = 1
	handler.SlaveId = byte(*slave)
	handler.Timeout = *timeout

	if err := handler.Connect(); err != nil {
		fatal("connect %s: %v", *port, err)
	}
	defer handler.Close()

	client := modbus.NewClient(handler)

	if err := run(client, args); err != nil {
		fatal("%s: %v", args[0], err)
	}
}

func run(client modbus.Client, args []string) error {
	switch args[0] {
	case "status":
		word, err := readReg(client, registers.AddrStatus)
		if err != nil {
			return err
		}
		printStatus(word)
		return nil

	case "read":
		addr, err := parseU16(arg(args, 1, "addr"))
		if err != nil {
			return err
		}
		v, err := readReg(client, addr)
		if err != nil {
			return err
		}
		fmt.Printf("0x%04X = %d\n", addr, v)
		return nil

	case "write":
		addr, err := parseU16(arg(args, 1, "addr"))
		if err != nil {
			return err
		}
		val, err := parseU16(arg(args, 2, "value"))
		if err != nil {
			return err
		}
		return writeReg(client, addr, val)

	case "price":
		return getSet(client, registers.PriceBase, args)

	case "stock":
		return getSet(client, registers.InventoryBase, args)

	case "select":
		id, err := parseU16(arg(args, 1, "id"))
		if err != nil {
			return err
		}
		return writeReg(client, registers.AddrItemSelect, id)

	case "dispense":
		return writeReg(client, registers.AddrDispense, 1)

	case "vend":
		id, err := parseU16(arg(args, 1, "id"))
		if err != nil {
			return err
		}
		if err := writeReg(client, registers.AddrItemSelect, id); err != nil {
			return err
		}
		return writeReg(client, registers.AddrDispense, 1)

	default:
		usage()
		return nil
	}
}

// getSet reads base+id, or writes a value there when one is given.
func getSet(client modbus.Client, base uint16, args []string) error {
	id, err := parseU16(arg(args, 1, "id"))
	if err != nil {
		return err
	}
	if id >= registers.ItemCount {
		return fmt.Errorf("item id %d out of range 0..%d", id, registers.ItemCount-1)
	}
	addr := base + id

	if len(args) > 2 {
		val, err := parseU16(args[2])
		if err != nil {
			return err
		}
		return writeReg(client, addr, val)
	}

	v, err := readReg(client, addr)
	if err != nil {
		return err
	}
	fmt.Printf("item %d = %d\n", id, v)
	return nil
}

func readReg(client modbus.Client, addr uint16) (uint16, error) {
	raw, err := client.ReadHoldingRegisters(addr, 1)
	if err != nil {
		return 0, err
	}
	if len(raw) < 2 {
		return 0, fmt.Errorf("short response: %d bytes", len(raw))
	}
	return uint16(raw[0])<<8 | uint16(raw[1]), nil
}

func writeReg(client modbus.Client, addr, value uint16) error {
	_, err := client.WriteSingleRegister(addr, value)
	return err
}

func printStatus(word uint16) {
	bit := func(n int) bool { return word&(1<<n) != 0 }
	fmt.Printf("status 0x%04X\n", word)
	fmt.Printf("  change_complete  %v\n", bit(15))
	fmt.Printf("  payment_accepted %v\n", bit(14))
	fmt.Printf("  payment_rejected %v\n", bit(13))
	fmt.Printf("  dispense_active  %v\n", bit(12))
	fmt.Printf("  vending_error    %v\n", bit(11))
	fmt.Printf("  comm_active      %v\n", bit(10))
	fmt.Printf("  system_ready     %v\n", bit(9))
	fmt.Printf("  item_id          %d\n", (word>>4)&0x0F)
	fmt.Printf("  last_function    0x%02X\n", word&0x0F)
}

func arg(args []string, i int, name string) string {
	if i >= len(args) {
		fatal("missing argument <%s>", name)
	}
	return args[i]
}

func parseU16(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 16)
	if err != nil {
		return 0, fmt.Errorf("bad number %q: %w", s, err)
	}
	return uint16(v), nil
}

func fatal(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "vendctl: "+format+"\n", a...)
	os.Exit(1)
}
