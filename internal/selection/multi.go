package selection

// Sink receives every champion the watch loop resolves.
type Sink interface {
	UpdateChampionData(display string, skins []string)
}

// MultiSink fans one publication out to several sinks, in order.
type MultiSink []Sink

func (m MultiSink) UpdateChampionData(display string, skins []string) {
	for _, sink := range m {
		if sink != nil {
			sink.UpdateChampionData(display, skins)
		}
	}
}
