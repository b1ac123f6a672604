// Alarm playback capabilities of the Chime client.

package client

import (
	"Chime/pkg/log"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
)

// Player is the opaque playback capability observed by the scheduler.
// Implementations must tolerate redundant Play and Stop calls.
type Player interface {
	Play(sound string) error
	Stop()
}

// CommandPlayer shells out to a configured audio player binary, e.g.
// aplay or afplay, with the sound file resolved under dir.
type CommandPlayer struct {
	command string
	dir     string

	mu  sync.Mutex
	cmd *exec.Cmd
}

func NewCommandPlayer(command, dir string) *CommandPlayer {
	return &CommandPlayer{command: command, dir: dir}
}

func (p *CommandPlayer) Play(sound string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.command == "" {
		return errors.New("no player command configured")
	}
	if p.cmd != nil {
		// Already playing
		return nil
	}
	cmd := exec.Command(p.command, filepath.Join(p.dir, filepath.Base(sound)))
	if starterr := cmd.Start(); starterr != nil {
		return starterr
	}
	p.cmd = cmd
	go func() {
		cmd.Wait()
		p.mu.Lock()
		if p.cmd == cmd {
			p.cmd = nil
		}
		p.mu.Unlock()
	}()
	return nil
}

func (p *CommandPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cmd != nil && p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	p.cmd = nil
}

// TonePlayer is the fallback tone generator: a repeating beep pattern
// written to out once per interval until stopped.
type TonePlayer struct {
	out      io.Writer
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

func NewTonePlayer(out io.Writer) *TonePlayer {
	return &TonePlayer{out: out, interval: time.Second}
}

func (p *TonePlayer) Play(string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		// Pattern already running
		return nil
	}
	stop := make(chan struct{})
	p.stop = stop
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			// Terminal bell stands in for the tone
			fmt.Fprint(p.out, "\a")
			select {
			case <-ticker.C:
			case <-stop:
				return
			}
		}
	}()
	return nil
}

func (p *TonePlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
}

// FallbackPlayer tries the primary player and silently substitutes the
// fallback tone when the named sound fails to play.
type FallbackPlayer struct {
	primary  Player
	fallback Player
	logger   log.Logger
}

func NewFallbackPlayer(primary, fallback Player, logger log.Logger) *FallbackPlayer {
	return &FallbackPlayer{primary: primary, fallback: fallback, logger: logger}
}

func (p *FallbackPlayer) Play(sound string) error {
	if playerr := p.primary.Play(sound); playerr != nil {
		p.logger.Warn().Err(playerr).Msgf("Couldn't play sound %s, falling back to tone", sound)
		return p.fallback.Play(sound)
	}
	return nil
}

func (p *FallbackPlayer) Stop() {
	p.primary.Stop()
	p.fallback.Stop()
}
