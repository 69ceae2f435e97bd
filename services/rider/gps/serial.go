package gps

import (
	"io"

	serial "github.com/jacobsa/go-serial/serial"
)

const defaultBaudRate = 9600

// SerialOpener opens the receiver on a serial port, 8N1
func SerialOpener(portName string, baudRate uint) Opener {
	if baudRate == 0 {
		baudRate = defaultBaudRate
	}
	opts := serial.OpenOptions{
		PortName:        portName,
		BaudRate:        baudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	}
	return func() (io.ReadCloser, error) {
		return serial.Open(opts)
	}
}
