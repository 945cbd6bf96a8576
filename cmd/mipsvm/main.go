// Command mipsvm runs a MIPS-I program image and serves a GDB Remote Serial
// Protocol debug session over TCP.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mipsvm/internal/debugtarget"
	"mipsvm/internal/gdbstub"
	"mipsvm/internal/memview"
	"mipsvm/internal/mips"
	"mipsvm/internal/pagepool"
)

func main() {
	verbose := flag.Bool("v", false, "enable verbose logging")
	addr := flag.String("addr", "127.0.0.1:1234", "GDB remote serial protocol listen address")
	loadPath := flag.String("load", "", "raw big-endian program image to load at address 0")
	entry := flag.String("entry", "0", "initial program counter, hex")
	memoryFlag := flag.Uint64("memory", 1<<20, "bytes of address space to preallocate as pages (max 4294967295)")
	interactive := flag.Bool("interactive", false, "use a raw-mode terminal console for syscall I/O")
	flag.Parse()

	if *memoryFlag > uint64(math.MaxUint32) {
		log.Fatalf("memory size %d exceeds max uint32 %d", *memoryFlag, math.MaxUint32)
	}

	entryPC, err := parseHexUint32(*entry)
	if err != nil {
		log.Fatalf("invalid -entry value %q: %v", *entry, err)
	}

	pool := pagepool.New()
	view := memview.New(pool, true)

	printIfVerbose(*verbose, "preallocating %d bytes of address space", *memoryFlag)
	if err := preallocate(pool, *memoryFlag); err != nil {
		log.Fatalf("failed to preallocate address space: %v", err)
	}

	cpu := mips.NewCPU(view, nil)
	cpu.PC = entryPC

	if *loadPath != "" {
		printIfVerbose(*verbose, "loading program image from %s", *loadPath)
		if err := loadImage(view, *loadPath); err != nil {
			log.Fatalf("failed to load program image: %v", err)
		}
	}

	if *interactive {
		console, err := newInteractiveConsole()
		if err != nil {
			log.Fatalf("failed to start interactive console: %v", err)
		}
		defer console.Close()
		cpu.SetConsole(console)
	}

	listener, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("failed to listen on %s: %v", *addr, err)
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Printf("failed to close listener: %v", err)
		}
	}()
	printIfVerbose(*verbose, "listening for a GDB connection on %s", *addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	acceptDone := make(chan net.Conn, 1)
	acceptErr := make(chan error, 1)
	go func() {
		conn, err := listener.Accept()
		if err != nil {
			acceptErr <- err
			return
		}
		acceptDone <- conn
	}()

	var conn net.Conn
	select {
	case conn = <-acceptDone:
	case err := <-acceptErr:
		log.Fatalf("accept failed: %v", err)
	case <-sigCh:
		printIfVerbose(*verbose, "interrupted before a client connected")
		os.Exit(0)
	}

	start := time.Now()
	target := debugtarget.New(cpu, view)
	session := gdbstub.NewSession(gdbstub.NewTCPConnection(conn), target)

	sessionDone := make(chan error, 1)
	go func() { sessionDone <- session.Serve() }()

	select {
	case err := <-sessionDone:
		printIfVerbose(*verbose, "session ended after %s", time.Since(start))
		if err != nil {
			log.Printf("transport error: %v", err)
			os.Exit(1)
		}
	case <-sigCh:
		printIfVerbose(*verbose, "signal received, tearing down CPU...")
		target.Interrupt()
		cpu.Drop()
		_ = conn.Close()
		<-sessionDone
		printIfVerbose(*verbose, "session interrupted after %s", time.Since(start))
	}
}

// preallocate creates pages covering the first bytes of address space so a
// flat-loaded program image doesn't pay a page fault for every 64 KiB
// boundary it crosses.
func preallocate(pool *pagepool.Pool, bytes uint64) error {
	pages := bytes / pagepool.PageSize
	if bytes%pagepool.PageSize != 0 {
		pages++
	}
	for i := uint64(0); i < pages && i <= 0xFFFF; i++ {
		if err := pool.Create(uint16(i), nil); err != nil {
			return err
		}
	}
	return nil
}

// loadImage reads a stream of big-endian 32-bit words from path and stores
// them at consecutive word addresses starting at zero.
func loadImage(view *memview.View, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	addr := uint32(0)
	for {
		var word uint32
		if err := binary.Read(f, binary.BigEndian, &word); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if err := view.Store32(addr, word); err != nil {
			return err
		}
		addr += 4
	}
}

func parseHexUint32(s string) (uint32, error) {
	var v uint32
	_, err := fmt.Sscanf(s, "%x", &v)
	return v, err
}

// printIfVerbose prints a formatted message if verbose is true.
func printIfVerbose(verbose bool, format string, v ...interface{}) {
	if verbose {
		log.Printf(format, v...)
	}
}
