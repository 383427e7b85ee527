package wire

// Action names an inbound client intent, decoded from the demux table.
type Action int8

const (
	ActionNone Action = iota
	ActionSelectChancellor
	ActionEliminatePolicy
	ActionReveal
	ActionKill
	ActionSelectSpecialPresident
	ActionVoteJa
	ActionVoteNein
	ActionAcceptVeto
	ActionRejectVeto
	ActionSetName
	ActionMarkReady
	ActionMarkNotReady
)

// Inbound is a decoded client frame. Arg carries the target index for
// targeted actions (select/eliminate/reveal/kill/special-president). Name
// carries the payload bytes for ActionSetName only.
type Inbound struct {
	Action Action
	Arg    int
	Name   []byte
}

// maxNameBytes is the wire limit on a set-name payload; longer names are
// silently rejected.
const maxNameBytes = 255

// Decode demultiplexes one inbound BINARY frame. The first byte's low 3
// bits select the action (firstByte mod 8); the remaining 5 bits carry
// either a target index or, for mod==7, a non-targeted sub-action. Unknown
// or malformed frames decode to ActionNone, which the coordinator drops
// silently.
func Decode(frame []byte) Inbound {
	if len(frame) == 0 {
		return Inbound{Action: ActionNone}
	}
	first := frame[0]
	mod := first & 7
	arg := int(first >> 3)

	switch mod {
	case 0:
		return Inbound{Action: ActionSelectChancellor, Arg: arg}
	case 1:
		return Inbound{Action: ActionEliminatePolicy, Arg: arg}
	case 2:
		return Inbound{Action: ActionReveal, Arg: arg}
	case 3:
		return Inbound{Action: ActionKill, Arg: arg}
	case 4:
		return Inbound{Action: ActionSelectSpecialPresident, Arg: arg}
	case 7:
		switch arg {
		case 0:
			return Inbound{Action: ActionVoteJa}
		case 1:
			return Inbound{Action: ActionVoteNein}
		case 2:
			return Inbound{Action: ActionAcceptVeto}
		case 3:
			return Inbound{Action: ActionRejectVeto}
		case 4:
			name := frame[1:]
			if len(name) > maxNameBytes {
				return Inbound{Action: ActionNone}
			}
			return Inbound{Action: ActionSetName, Name: name}
		case 5:
			return Inbound{Action: ActionMarkReady}
		case 6:
			return Inbound{Action: ActionMarkNotReady}
		default:
			return Inbound{Action: ActionNone}
		}
	default:
		return Inbound{Action: ActionNone}
	}
}
