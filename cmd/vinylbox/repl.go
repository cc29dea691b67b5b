package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ohmeg/vinylbox/internal/app/playback"
	"github.com/ohmeg/vinylbox/internal/app/player"
)

// runREPL reads commands from stdin until quit or EOF. This is the minimal
// stand-in for the graphical shell: it only issues intents and renders the
// core's observable state.
func runREPL(p *player.Player) error {
	fmt.Println("vinylbox ready. Type 'help' for commands.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "help", "h":
			printHelp()
		case "play", "p":
			if err := p.PlayPause(); err != nil {
				fmt.Println("Nothing to play. Add files or a folder first.")
			}
		case "stop":
			p.Stop()
		case "next", "n":
			_ = p.Next()
		case "prev":
			_ = p.Previous()
		case "goto":
			handleGoto(p, args)
		case "seek":
			handleSeek(p, args)
		case "vol":
			handleVolume(p, args)
		case "shuffle":
			if p.ToggleShuffle() {
				fmt.Println("🔀 Shuffle on")
			} else {
				fmt.Println("🔀 Shuffle off")
			}
		case "repeat":
			fmt.Printf("🔁 Repeat: %s\n", p.ToggleRepeat())
		case "add":
			for _, path := range args {
				enqueue(p, path)
			}
		case "rm":
			handleRemove(p, args)
		case "clear":
			p.ClearPlaylist()
		case "ls":
			printPlaylist(p)
		case "status", "s":
			printStatus(p.Status())
		case "quit", "q", "exit":
			return nil
		default:
			fmt.Printf("Unknown command: %s (try 'help')\n", cmd)
		}
	}
}

func handleGoto(p *player.Player, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: goto <index>")
		return
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("Usage: goto <index>")
		return
	}
	if err := p.PlayAt(idx); err != nil {
		fmt.Printf("Cannot play track %d: %v\n", idx, err)
	}
}

func handleSeek(p *player.Player, args []string) {
	if len(args) != 1 {
		fmt.Println("Usage: seek <seconds>")
		return
	}
	sec, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		fmt.Println("Usage: seek <seconds>")
		return
	}
	p.Seek(sec)
}

func handleVolume(p *player.Player, args []string) {
	if len(args) != 1 {
		fmt.Printf("Volume: %.0f%%\n", p.Status().Volume*100)
		return
	}
	switch args[0] {
	case "up":
		fmt.Printf("Volume: %.0f%%\n", p.AdjustVolume(0.1)*100)
	case "down":
		fmt.Printf("Volume: %.0f%%\n", p.AdjustVolume(-0.1)*100)
	default:
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			fmt.Println("Usage: vol [up|down|0..1]")
			return
		}
		p.SetVolume(v)
	}
}

func handleRemove(p *player.Player, args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: rm <index> [index...]")
		return
	}
	indices := make([]int, 0, len(args))
	for _, a := range args {
		idx, err := strconv.Atoi(a)
		if err != nil {
			fmt.Println("Usage: rm <index> [index...]")
			return
		}
		indices = append(indices, idx)
	}
	p.RemoveItems(indices)
}

func printPlaylist(p *player.Player) {
	tracks := p.Tracks()
	if len(tracks) == 0 {
		fmt.Println("Playlist is empty.")
		return
	}
	current := p.Status().TrackIndex
	for i, t := range tracks {
		marker := "  "
		if i == current {
			marker = "▶ "
		}
		fmt.Printf("%s%3d  %s\n", marker, i, t.Name())
	}
}

func printStatus(s player.Status) {
	if s.Phase == playback.PhaseStopped {
		fmt.Printf("⏹  Stopped — %d track(s)\n", s.TrackCount)
		return
	}

	lengthText := "--:--"
	if s.TrackLength > 0 {
		lengthText = player.FormatTime(s.TrackLength)
	}
	fmt.Printf("%s %s  %s / %s  vol=%.0f%%  shuffle=%t repeat=%s\n",
		phaseIcon(s.Phase), s.TrackName,
		player.FormatTime(s.Elapsed), lengthText,
		s.Volume*100, s.Shuffle, s.Repeat)
}

func phaseIcon(phase playback.Phase) string {
	switch phase {
	case playback.PhasePlaying:
		return "▶️ "
	case playback.PhasePaused:
		return "⏸ "
	default:
		return "⏹ "
	}
}

func printHelp() {
	fmt.Println(`Commands:
  play, p          Play or pause
  stop             Stop playback
  next, n          Next track
  prev             Previous track
  goto <i>         Play track at index i
  seek <sec>       Seek to position (seconds)
  vol [up|down|v]  Show or set volume
  shuffle          Toggle shuffle
  repeat           Toggle repeat-one
  add <path>...    Add files or folders
  rm <i>...        Remove tracks by index
  clear            Clear the playlist
  ls               List the playlist
  status, s        Show playback status
  quit, q          Exit`)
}
