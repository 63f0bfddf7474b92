// Soundboard is an interactive demo of the audio plugin. It loads every
// supported sound file from a directory and plays them on a dynamic channel
// while showing live instance states.
//
// Usage: soundboard [directory]
//
// Keys: 1-9 play sound, l play looped, s stop channel, p pause, r resume,
// +/- channel volume, [/] playback rate, q quit.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/RobWalt/bevy-kira-audio/audio"
	"github.com/RobWalt/bevy-kira-audio/source"
)

type board struct {
	plugin  *audio.Plugin
	channel *audio.AudioChannel
	names   []string
	sounds  []source.Handle
	playing []playingEntry
	volume  float64
	rate    float64
}

type playingEntry struct {
	name   string
	handle audio.InstanceHandle
}

func main() {
	dir := "sounds"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	plugin := audio.New()
	if err := plugin.Init(); err != nil {
		log.Fatalf("init audio: %v", err)
	}
	if err := plugin.Start(); err != nil {
		log.Fatalf("start audio: %v", err)
	}
	defer plugin.Stop()

	b := &board{
		plugin:  plugin,
		channel: plugin.Channels().Channel("board"),
		volume:  1.0,
		rate:    1.0,
	}
	if err := b.loadSounds(dir); err != nil {
		log.Fatalf("loading sounds from %q: %v", dir, err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("creating screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("initializing screen: %v", err)
	}
	defer screen.Fini()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			events <- screen.PollEvent()
		}
	}()

	ticker := time.NewTicker(16 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.plugin.Update()
			b.draw(screen)
		case ev := <-events:
			key, ok := ev.(*tcell.EventKey)
			if !ok {
				continue
			}
			if b.handleKey(key) {
				return
			}
		}
	}
}

func (b *board) loadSounds(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	loader := b.plugin.Loader()
	for _, entry := range entries {
		if entry.IsDir() || !source.Supported(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		b.names = append(b.names, entry.Name())
		b.sounds = append(b.sounds, loader.Load(path))
	}
	sort.Sort(byName{b})
	if len(b.sounds) == 0 {
		return fmt.Errorf("no supported sound files")
	}
	return nil
}

func (b *board) play(index int, looped bool) {
	if index < 0 || index >= len(b.sounds) {
		return
	}
	cmd := b.channel.Play(b.sounds[index])
	if looped {
		cmd.Looped()
	}
	handle := cmd.Commit()
	b.playing = append(b.playing, playingEntry{name: b.names[index], handle: handle})
	if len(b.playing) > 12 {
		b.playing = b.playing[len(b.playing)-12:]
	}
}

func (b *board) handleKey(key *tcell.EventKey) (quit bool) {
	switch key.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
	default:
		return false
	}

	r := key.Rune()
	switch {
	case r >= '1' && r <= '9':
		b.play(int(r-'1'), false)
	case r == 'l':
		b.play(0, true)
	case r == 's':
		b.channel.Stop()
	case r == 'p':
		b.channel.Pause()
	case r == 'r':
		b.channel.Resume()
	case r == '+' || r == '=':
		b.volume = b.volume + 0.1
		b.channel.SetVolume(b.volume)
	case r == '-':
		if b.volume > 0.1 {
			b.volume -= 0.1
		}
		b.channel.SetVolume(b.volume)
	case r == ']':
		b.rate += 0.1
		b.channel.SetPlaybackRate(b.rate)
	case r == '[':
		if b.rate > 0.2 {
			b.rate -= 0.1
		}
		b.channel.SetPlaybackRate(b.rate)
	case r == 'q':
		return true
	}
	return false
}

func (b *board) draw(screen tcell.Screen) {
	screen.Clear()
	style := tcell.StyleDefault

	row := 0
	put(screen, 0, row, style.Bold(true), "soundboard")
	row++
	if !b.plugin.IsAvailable() {
		put(screen, 0, row, style.Foreground(tcell.ColorRed), "no audio device - silent mode")
		row++
	}
	put(screen, 0, row, style, fmt.Sprintf("volume %.1f  rate %.1f", b.volume, b.rate))
	row += 2

	for i, name := range b.names {
		if i >= 9 {
			break
		}
		put(screen, 0, row, style, fmt.Sprintf("%d  %s", i+1, name))
		row++
	}
	row++

	put(screen, 0, row, style.Bold(true), "instances")
	row++
	for _, entry := range b.playing {
		state := b.channel.State(entry.handle)
		line := fmt.Sprintf("%-24s %-9s %6.2fs", entry.name, state.Kind, state.Position)
		put(screen, 0, row, style, line)
		row++
	}

	stats := b.plugin.Stats()
	put(screen, 0, row+1, style.Dim(true),
		fmt.Sprintf("played %d  dropped %d  retried %d", stats.Played, stats.Dropped, stats.Retried))
	screen.Show()
}

func put(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for i, r := range text {
		screen.SetContent(x+i, y, r, nil, style)
	}
}

// byName sorts the sound list by file name, keeping names and handles aligned.
type byName struct{ b *board }

func (s byName) Len() int           { return len(s.b.names) }
func (s byName) Less(i, j int) bool { return s.b.names[i] < s.b.names[j] }
func (s byName) Swap(i, j int) {
	s.b.names[i], s.b.names[j] = s.b.names[j], s.b.names[i]
	s.b.sounds[i], s.b.sounds[j] = s.b.sounds[j], s.b.sounds[i]
}
