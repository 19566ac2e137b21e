//go:build tinygo

package audio

import (
	"fmt"
	"machine"

	"tinygo.org/x/drivers/tone"
)

// Piezo drives a piezo speaker from a PWM channel.
type Piezo struct {
	spk tone.Speaker
}

// NewPiezo configures pwm for pin and leaves the speaker silent.
func NewPiezo(pwm tone.PWM, pin machine.Pin) (*Piezo, error) {
	spk, err := tone.New(pwm, pin)
	if err != nil {
		return nil, fmt.Errorf("%w: pwm on pin %d: %v", ErrAudioInit, pin, err)
	}
	spk.Stop()
	return &Piezo{spk: spk}, nil
}

func (p *Piezo) Start(freqHz uint32) {
	p.spk.SetPeriod(PeriodFromHz(freqHz))
}

func (p *Piezo) Stop() {
	p.spk.Stop()
}
