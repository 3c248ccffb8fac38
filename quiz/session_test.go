package quiz

import "testing"

func testSet(n int) QuestionSet {
	set := make(QuestionSet, 0, n)
	for i := 0; i < n; i++ {
		set = append(set, Question{
			Prompt:  "2+2?",
			Options: []string{"3", "4", "5", "6"},
			Correct: LabelB,
		})
	}
	return set
}

func TestSessionAnswer(t *testing.T) {
	t.Run("CorrectAnswer", func(t *testing.T) {
		s := NewSession("s1", "owner", testSet(1))

		res, ok := s.Answer("owner", LabelB)
		if !ok {
			t.Fatal("expected the owner's answer to be accepted")
		}
		if !res.Correct {
			t.Error("expected the answer to score as correct")
		}
		if !res.Finished || res.Score != 1 || res.Total != 1 {
			t.Errorf("expected final summary 1/1, got %d/%d finished=%v", res.Score, res.Total, res.Finished)
		}
		if s.State != StateFinished {
			t.Errorf("expected session state Finished, got %v", s.State)
		}
	})

	t.Run("WrongAnswerRevealsCorrectLabel", func(t *testing.T) {
		s := NewSession("s1", "owner", testSet(1))

		res, ok := s.Answer("owner", LabelA)
		if !ok {
			t.Fatal("expected the owner's answer to be accepted")
		}
		if res.Correct {
			t.Error("expected the answer to score as wrong")
		}
		if res.CorrectLabel != LabelB {
			t.Errorf("expected correct label B revealed, got %s", res.CorrectLabel)
		}
		if res.Score != 0 || res.Total != 1 {
			t.Errorf("expected final summary 0/1, got %d/%d", res.Score, res.Total)
		}
	})

	t.Run("NonOwnerIgnored", func(t *testing.T) {
		s := NewSession("s1", "owner", testSet(1))

		if _, ok := s.Answer("intruder", LabelB); ok {
			t.Fatal("expected a non-owner answer to be dropped")
		}
		if s.Score != 0 || s.Index != 0 || s.State != StateAwaitingAnswer {
			t.Errorf("non-owner answer changed state: score=%d index=%d state=%v", s.Score, s.Index, s.State)
		}
	})

	t.Run("StaleAnswerIgnored", func(t *testing.T) {
		s := NewSession("s1", "owner", testSet(2))

		if _, ok := s.Answer("owner", LabelB); !ok {
			t.Fatal("first answer should be accepted")
		}
		score, index := s.Score, s.Index

		// A second event for the already-resolved question must be a no-op
		// on everything but the now-current question; since the session has
		// advanced, only the new window accepts answers.
		if _, ok := s.Answer("owner", LabelB); !ok {
			t.Fatal("answer for the newly presented question should be accepted")
		}
		if s.Score != score+1 || s.Index != index+1 {
			t.Errorf("unexpected progress: score=%d index=%d", s.Score, s.Index)
		}
		if _, ok := s.Answer("owner", LabelB); ok {
			t.Error("answer after the session finished should be dropped")
		}
	})
}

func TestSessionTimeout(t *testing.T) {
	t.Run("AdvancesWithoutScoring", func(t *testing.T) {
		s := NewSession("s1", "owner", testSet(2))

		res, ok := s.Timeout()
		if !ok {
			t.Fatal("expected the timeout to resolve the question")
		}
		if res.TimedOut != true || res.Finished {
			t.Errorf("unexpected resolution: %+v", res)
		}
		if s.Score != 0 {
			t.Errorf("timeout must not score, got %d", s.Score)
		}
		if s.Index != 1 || s.State != StateAwaitingAnswer {
			t.Errorf("expected question 2 outstanding, got index=%d state=%v", s.Index, s.State)
		}
	})

	t.Run("FinalTimeoutFinishes", func(t *testing.T) {
		s := NewSession("s1", "owner", testSet(1))

		res, _ := s.Timeout()
		if !res.Finished || res.Score != 0 || res.Total != 1 {
			t.Errorf("expected final summary 0/1, got %+v", res)
		}
	})

	t.Run("TimeoutAfterFinishIgnored", func(t *testing.T) {
		s := NewSession("s1", "owner", testSet(1))
		s.Timeout()

		if _, ok := s.Timeout(); ok {
			t.Error("timeout on a finished session should be dropped")
		}
	})
}

func TestSessionReachesFinishedAfterExactlyN(t *testing.T) {
	const n = 5
	s := NewSession("s1", "owner", testSet(n))

	resolved := 0
	for s.State != StateFinished {
		var ok bool
		if resolved%2 == 0 {
			_, ok = s.Answer("owner", LabelB)
		} else {
			_, ok = s.Timeout()
		}
		if !ok {
			t.Fatalf("resolution %d was dropped", resolved)
		}
		resolved++
		if resolved > n {
			t.Fatal("session did not finish after all questions resolved")
		}

		// Score can never exceed the number of resolved questions.
		if s.Score > resolved {
			t.Fatalf("score %d exceeds resolved count %d", s.Score, resolved)
		}
	}
	if resolved != n {
		t.Errorf("expected exactly %d resolutions, got %d", n, resolved)
	}
	if s.Score != 3 {
		t.Errorf("expected 3 correct answers, got %d", s.Score)
	}
}

func TestSessionCurrent(t *testing.T) {
	s := NewSession("s1", "owner", testSet(1))

	q, ok := s.Current()
	if !ok || q.Prompt != "2+2?" {
		t.Fatalf("expected the first question outstanding, got %+v ok=%v", q, ok)
	}

	s.Answer("owner", LabelB)
	if _, ok := s.Current(); ok {
		t.Error("finished session should have no outstanding question")
	}
}
