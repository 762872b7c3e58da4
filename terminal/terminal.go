package terminal

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"go.bug.st/serial"
)

// Open - Otevře terminál komunikující se zařízením na daném portu
func Open(port string, baud int) error {
	conn, err := serial.Open(port, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})

	if err != nil {
		return err
	}

	defer conn.Close()

	return Bridge(conn, os.Stdin, os.Stdout)
}

// Bridge - Propojí zařízení se vstupem a výstupem, skončí jakmile skončí jedna strana
func Bridge(conn io.ReadWriter, in io.Reader, out io.Writer) error {
	done := make(chan error, 2)

	go func() { done <- readSerial(conn, out) }()
	go func() { done <- writeSerial(conn, in) }()

	return <-done
}

// Číst data, které posílá zařízení a vypisovat tato data na výstup
func readSerial(conn io.Reader, out io.Writer) error {
	buffer := make([]byte, 100)

	for {
		n, err := conn.Read(buffer)

		if err != nil {
			return err
		}

		if n == 0 {
			fmt.Fprintln(out, "\nEOF")
			return nil
		}

		if _, err := out.Write(buffer[:n]); err != nil {
			return err
		}
	}
}

// Číst data ze vstupu a poslat je zařízení
func writeSerial(conn io.Writer, in io.Reader) error {
	buffer := make([]byte, 100)
	reader := bufio.NewReader(in)

	for {
		n, err := reader.Read(buffer)

		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		if _, err := conn.Write(buffer[:n]); err != nil {
			return err
		}
	}
}
