package quiz

// State of a running session.
type State int

const (
	StateAwaitingAnswer State = iota
	StateScoring
	StateAdvancing
	StateFinished
)

// Session tracks one player's run through a fixed question set: the current
// index, the score, and the transitions driven by an answer or a timeout.
// Sessions live in memory only and are discarded once finished.
//
// A session has a single owner. Answers from anyone else, or answers arriving
// after the current question has already been resolved, are dropped without
// changing any state.
type Session struct {
	ID        string
	OwnerID   string
	Questions QuestionSet
	Index     int
	Score     int
	State     State
}

func NewSession(id, ownerID string, questions QuestionSet) *Session {
	return &Session{
		ID:        id,
		OwnerID:   ownerID,
		Questions: questions,
		State:     StateAwaitingAnswer,
	}
}

// Current returns the outstanding question, or false once the session has
// finished.
func (s *Session) Current() (Question, bool) {
	if s.State == StateFinished {
		return Question{}, false
	}
	return s.Questions[s.Index], true
}

// Resolution describes how one question was resolved and where the session
// stands afterwards.
type Resolution struct {
	TimedOut     bool
	Correct      bool
	CorrectLabel Label
	Score        int
	Total        int
	Finished     bool
}

// Answer resolves the outstanding question with the actor's pick. It reports
// ok == false when the event does not qualify (wrong actor, or the question
// was already resolved) and leaves the session untouched in that case.
func (s *Session) Answer(actorID string, pick Label) (Resolution, bool) {
	if s.State != StateAwaitingAnswer || actorID != s.OwnerID {
		return Resolution{}, false
	}

	s.State = StateScoring
	q := s.Questions[s.Index]
	res := Resolution{
		Correct:      pick == q.Correct,
		CorrectLabel: q.Correct,
	}
	if res.Correct {
		s.Score++
	}
	s.advance(&res)
	return res, true
}

// Timeout resolves the outstanding question as unanswered. The score is
// unchanged; the session advances to the next question or finishes.
func (s *Session) Timeout() (Resolution, bool) {
	if s.State != StateAwaitingAnswer {
		return Resolution{}, false
	}
	res := Resolution{
		TimedOut:     true,
		CorrectLabel: s.Questions[s.Index].Correct,
	}
	s.advance(&res)
	return res, true
}

func (s *Session) advance(res *Resolution) {
	s.State = StateAdvancing
	s.Index++
	if s.Index == len(s.Questions) {
		s.State = StateFinished
	} else {
		s.State = StateAwaitingAnswer
	}
	res.Score = s.Score
	res.Total = len(s.Questions)
	res.Finished = s.State == StateFinished
}
