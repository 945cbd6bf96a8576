// Command mipsdisasm prints a textual disassembly of a MIPS-I program
// image, accepting either an ELF file or a raw big-endian word stream.
package main

import (
	"debug/elf"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"mipsvm/internal/disasm"
)

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Println("Usage: mipsdisasm <mips32_binary_file>")
		return
	}

	fileName := flag.Arg(0)
	file, err := os.Open(fileName)
	if err != nil {
		log.Fatalf("failed to open file: %v", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("failed to close file: %v", err)
		}
	}()

	if elfFile, err := elf.Open(fileName); err == nil {
		defer func() {
			if err := elfFile.Close(); err != nil {
				log.Printf("failed to close ELF file: %v", err)
			}
		}()
		disassembleELF(elfFile)
		return
	}

	fmt.Println("not an ELF file, treating as raw big-endian binary")
	disassembleRaw(file)
}

func disassembleELF(elfFile *elf.File) {
	fmt.Printf("ELF file: %s\n", elfFile.Machine)
	fmt.Printf("entry point: 0x%08X\n\n", elfFile.Entry)

	order := binary.ByteOrder(binary.BigEndian)
	if elfFile.ByteOrder == binary.LittleEndian {
		order = binary.LittleEndian
	}
	fmt.Printf("byte order: %v (from ELF header)\n\n", elfFile.ByteOrder)

	textSection := elfFile.Section(".text")
	if textSection == nil {
		fmt.Println("warning: no .text section found")
		for _, section := range elfFile.Sections {
			if section.Flags&elf.SHF_EXECINSTR != 0 {
				fmt.Printf("found executable section: %s\n", section.Name)
				disassembleSection(section, order)
			}
		}
		return
	}

	fmt.Printf("disassembling .text (0x%08X - 0x%08X):\n", textSection.Addr, textSection.Addr+textSection.Size)
	disassembleSection(textSection, order)
}

func disassembleSection(section *elf.Section, order binary.ByteOrder) {
	data, err := section.Data()
	if err != nil {
		log.Printf("failed to read section %s: %v", section.Name, err)
		return
	}

	addr := section.Addr
	for i := 0; i+4 <= len(data); i += 4 {
		inst := order.Uint32(data[i : i+4])
		pc := uint32(addr) + uint32(i)
		fmt.Printf("0x%08X: 0x%08X\t%s\n", pc, inst, disasm.Instruction(inst, pc))
	}
}

func disassembleRaw(file *os.File) {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		log.Fatalf("failed to seek file: %v", err)
	}

	var offset uint32
	for {
		var inst uint32
		if err := binary.Read(file, binary.BigEndian, &inst); err != nil {
			break
		}
		fmt.Printf("0x%08X: 0x%08X\t%s\n", offset, inst, disasm.Instruction(inst, offset))
		offset += 4
	}
}
