package main

// removeSimultaneousNotes drops every window note that starts on the same
// tick as an earlier window note, along with the next off of its key. The
// first note at a tick wins. Returns the filtered events and how many notes
// were removed.
func removeSimultaneousNotes(events []MidiEvent, cfg *Config, diag *Diagnostics) ([]MidiEvent, int) {
	kept := make([]MidiEvent, 0, len(events))
	pendingOffs := make(map[uint8]int) // key -> offs still to drop

	var lastStart uint32
	haveStart := false
	removed := 0

	for _, event := range events {
		key, _, on, ok := noteInfo(event.Message)
		if !ok || !cfg.inPitchWindow(key) {
			kept = append(kept, event)
			continue
		}

		if on {
			if haveStart && event.Time == lastStart {
				pendingOffs[key]++
				removed++
				diag.Infof(DiagSimultaneousNote, event.Time, "removing key %d starting with another note", key)
				continue
			}
			lastStart = event.Time
			haveStart = true
			kept = append(kept, event)
			continue
		}

		if pendingOffs[key] > 0 {
			pendingOffs[key]--
			continue
		}
		kept = append(kept, event)
	}

	return kept, removed
}
