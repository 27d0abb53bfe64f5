package simulate

// Generation defaults.
const (
	DefaultPlayers      = 16
	DefaultWeeks        = 12
	DefaultSessionEvery = 6
	DefaultAbsenceRate  = 0.08
	DefaultSeed         = 42
)

// Player skill range, in strokes over par for nine holes.
const (
	minSkill   = 1.0
	skillRange = 14.0
	// noticeShare is the fraction of absences announced in advance.
	noticeShare = 0.5
)

const eighteenHoles = 18

// Par and difficulty layout of the generated course. Odd indices sit on
// the front nine and even on the back.
var (
	coursePars       = [eighteenHoles]int{4, 4, 3, 5, 4, 4, 3, 4, 5, 4, 3, 5, 4, 4, 3, 4, 5, 4}
	courseDifficulty = [eighteenHoles]int{7, 1, 17, 5, 11, 3, 15, 9, 13, 8, 18, 4, 12, 2, 16, 10, 6, 14}
)
