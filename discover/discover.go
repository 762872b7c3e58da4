package discover

import (
	"strings"

	"github.com/albenik/go-serial/v2/enumerator"
	"github.com/pkg/errors"
)

// RaspberryPiVID - USB vendor ID firmy Raspberry Pi (desky Pico)
const RaspberryPiVID = "2E8A"

// Device - Informace o nalezeném zařízení
type Device struct {
	Port   string // Sériový port, na kterém se zařízení nachází
	VID    string
	PID    string
	Serial string
}

// ErrNoDevice - Není připojen žádný odpovídající sériový port
var ErrNoDevice = errors.New("no available Pico devices found")

// listPorts se v testech nahrazuje
var listPorts = enumerator.GetDetailedPortsList

// matches - Je port USB zařízení od Raspberry Pi?
func matches(port *enumerator.PortDetails) bool {
	return port.IsUSB && strings.EqualFold(port.VID, RaspberryPiVID)
}

func toDevice(port *enumerator.PortDetails) Device {
	return Device{
		Port:   port.Name,
		VID:    strings.ToUpper(port.VID),
		PID:    strings.ToUpper(port.PID),
		Serial: port.SerialNumber,
	}
}

// AllDevices - Najde všechna připojená zařízení a vrátí jejich seznam
func AllDevices() ([]Device, error) {
	ports, err := listPorts()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate serial ports")
	}

	found := []Device{}
	for _, port := range ports {
		if matches(port) {
			found = append(found, toDevice(port))
		}
	}

	return found, nil
}

// FirstDevice - Získá informaci o prvním nalezeném zařízení
func FirstDevice() (*Device, error) {
	devices, err := AllDevices()
	if err != nil {
		return nil, err
	}

	if len(devices) == 0 {
		return nil, ErrNoDevice
	}

	return &devices[0], nil
}
