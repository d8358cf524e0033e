package crossing

// Timing constants, in ticks. The control loop polls once per millisecond
// so one tick is roughly 1 ms.
const (
	GreenTime   = 2000
	AmberTime   = 1000
	RedTime     = GreenTime
	WalkTime    = 2000
	BeepOnTime  = 100
	BeepOffTime = 400
)

// CycleTicks is the length of one full green/amber/red cycle with no
// pedestrian request. Each phase spends one extra tick on its transition:
// the tick that enters red only reloads the timer, so red shows for
// RedTime+1 polls and a crossing's first beep for BeepOnTime+1, where a
// loop that also counted down on the entry tick would give RedTime and
// BeepOnTime.
const CycleTicks = (GreenTime + 1) + (AmberTime + 1) + (RedTime + 1)
