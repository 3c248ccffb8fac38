package quiz

import "fmt"

// Label identifies one of the four answer options by position.
type Label string

const (
	LabelA Label = "A"
	LabelB Label = "B"
	LabelC Label = "C"
	LabelD Label = "D"
)

// Labels lists the option labels in positional order.
var Labels = []Label{LabelA, LabelB, LabelC, LabelD}

// Index returns the option position for the label, or -1 for anything
// outside A-D.
func (l Label) Index() int {
	for i, known := range Labels {
		if l == known {
			return i
		}
	}
	return -1
}

// Question is a single multiple-choice question with four options, one of
// which is correct.
type Question struct {
	Prompt  string
	Options []string
	Correct Label
}

func (q Question) validate() error {
	if q.Prompt == "" {
		return fmt.Errorf("missing question text")
	}
	if len(q.Options) != 4 {
		return fmt.Errorf("expected 4 options, got %d", len(q.Options))
	}
	for i, opt := range q.Options {
		if opt == "" {
			return fmt.Errorf("option %s is empty", Labels[i])
		}
	}
	if q.Correct.Index() < 0 {
		return fmt.Errorf("correct answer %q is not one of A-D", string(q.Correct))
	}
	return nil
}

// QuestionSet is an ordered sequence of questions. It is built once by the
// provider and never mutated afterwards.
type QuestionSet []Question
