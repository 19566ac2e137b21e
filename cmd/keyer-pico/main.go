//go:build rp2040

// Command keyer-pico keys sidetone on a piezo wired to GP15 of a Pico.
// It announces power-on, then keys every line received over USB serial.
package main

import (
	"machine"
	"strings"
	"time"

	"github.com/gigurra/keyer/cmd/morse/audio"
	"github.com/gigurra/keyer/cmd/morse/keyer"
)

const (
	piezoPin = machine.GP15 // PWM slice 7, channel B
	wpm      = keyer.DefaultWPM
)

func main() {
	time.Sleep(3 * time.Second)

	println("[keyer] configuring piezo …")
	piezo, err := audio.NewPiezo(machine.PWM7, piezoPin)
	if err != nil {
		println("[keyer] piezo:", err.Error())
		return
	}

	unit, _ := keyer.DitDuration(wpm)
	player := keyer.NewPlayer(piezo, keyer.NewTiming(unit),
		keyer.WithSidetone(keyer.DefaultSidetoneHz),
	)
	sender := keyer.NewSender(player)
	sender.Send(keyer.ResponsePowerOn)
	println("[keyer] ready")

	var line []byte
	for {
		if machine.Serial.Buffered() == 0 {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		c, err := machine.Serial.ReadByte()
		if err != nil {
			continue
		}
		if c != '\r' && c != '\n' {
			line = append(line, c)
			continue
		}
		if len(line) == 0 {
			continue
		}
		text := strings.ToUpper(string(line))
		line = line[:0]
		println("[keyer] sending", text)
		sender.Send(text)
		sender.Send(keyer.ResponseOK)
	}
}
