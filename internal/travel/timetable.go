// Package travel covers cross-registration logistics: the exchange bus
// timetable and the travel-permission request workflow.
package travel

import "github.com/planwell/planwell/internal/errors"

// Stop is a named exchange bus stop.
type Stop string

const (
	StopWellesleyChapel Stop = "Wellesley Chapel"
	StopAlumnaeHall     Stop = "Alumnae Hall"
	StopHarvardSquare   Stop = "Harvard Square"
	StopMIT             Stop = "MIT (84 Mass Ave)"
)

// ExchangeBusTimes is the published exchange bus timetable. Each stop's
// slice lists that stop's times for every run of the day, so the same
// index at two stops belongs to the same bus.
var ExchangeBusTimes = map[Stop][]string{
	StopWellesleyChapel: {"7:30 am", "9:00 am", "10:30 am", "12:00 pm", "1:30 pm", "3:00 pm", "4:30 pm"},
	StopAlumnaeHall:     {"7:35 am", "9:05 am", "10:35 am", "12:05 pm", "1:35 pm", "3:05 pm", "4:35 pm"},
	StopHarvardSquare:   {"8:10 am", "9:40 am", "11:10 am", "12:40 pm", "2:10 pm", "3:40 pm", "5:10 pm"},
	StopMIT:             {"8:25 am", "9:55 am", "11:25 am", "12:55 pm", "2:25 pm", "3:55 pm", "5:25 pm"},
}

// Stops lists the timetable's stops in route order.
func Stops() []Stop {
	return []Stop{StopWellesleyChapel, StopAlumnaeHall, StopHarvardSquare, StopMIT}
}

func timeIndex(stop Stop, t string) (int, error) {
	for i, candidate := range ExchangeBusTimes[stop] {
		if candidate == t {
			return i, nil
		}
	}
	return 0, errors.NewTimeNotFound(string(stop))
}

// ArrivalTime returns when a bus departing origin at departure reaches
// destination. The departure must appear verbatim in the origin's column.
func ArrivalTime(origin, destination Stop, departure string) (string, error) {
	i, err := timeIndex(origin, departure)
	if err != nil {
		return "", err
	}
	times := ExchangeBusTimes[destination]
	if i >= len(times) {
		return "", errors.NewTimeNotFound(string(destination))
	}
	return times[i], nil
}

// DepartureTime returns when to board at origin so the bus reaches
// destination at arrival. The arrival must appear verbatim in the
// destination's column.
func DepartureTime(origin, destination Stop, arrival string) (string, error) {
	i, err := timeIndex(destination, arrival)
	if err != nil {
		return "", err
	}
	times := ExchangeBusTimes[origin]
	if i >= len(times) {
		return "", errors.NewTimeNotFound(string(origin))
	}
	return times[i], nil
}
