package threshold

// Rollup aggregates evaluations. Exception periods are counted as Excluded and
// never contribute to the colour counts or the worst colour.
type Rollup struct {
	Total    int    `json:"total"`
	Green    int    `json:"green"`
	Yellow   int    `json:"yellow"`
	Red      int    `json:"red"`
	Unknown  int    `json:"unknown"`
	NoData   int    `json:"no_data"`
	Excluded int    `json:"excluded"`
	Worst    Status `json:"worst"`
}

// Summarize rolls up a set of evaluations.
// Worst is red > yellow > green; with no colours it is unknown, then no_data.
func Summarize(evals []Evaluation) Rollup {
	r := Rollup{Total: len(evals)}
	for _, ev := range evals {
		switch ev.Status {
		case StatusGreen:
			r.Green++
		case StatusYellow:
			r.Yellow++
		case StatusRed:
			r.Red++
		case StatusUnknown:
			r.Unknown++
		case StatusNoData:
			r.NoData++
		case StatusException:
			r.Excluded++
		}
	}

	switch {
	case r.Red > 0:
		r.Worst = StatusRed
	case r.Yellow > 0:
		r.Worst = StatusYellow
	case r.Green > 0:
		r.Worst = StatusGreen
	case r.Unknown > 0:
		r.Worst = StatusUnknown
	default:
		r.Worst = StatusNoData
	}
	return r
}
