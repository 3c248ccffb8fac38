package quiz

// Subject is a top-level medical quiz category.
type Subject string

const (
	SubjectAnatomy      Subject = "Anatomy"
	SubjectPhysiology   Subject = "Physiology"
	SubjectPharmacology Subject = "Pharmacology"
	SubjectPathology    Subject = "Pathology"
)

// Subjects lists the selectable subjects in menu order.
var Subjects = []Subject{
	SubjectAnatomy,
	SubjectPhysiology,
	SubjectPharmacology,
	SubjectPathology,
}

var topicsBySubject = map[Subject][]string{
	SubjectAnatomy: {
		"Musculoskeletal System",
		"Cardiovascular System",
		"Nervous System",
		"Digestive System",
	},
	SubjectPhysiology: {
		"Cell Physiology",
		"Respiratory Physiology",
		"Renal Physiology",
		"Endocrine Physiology",
	},
	SubjectPharmacology: {
		"Antibiotics",
		"Analgesics",
		"Cardiovascular Drugs",
		"CNS Drugs",
	},
	SubjectPathology: {
		"Inflammation",
		"Neoplasia",
		"Infectious Disease",
		"Genetic Disorders",
	},
}

// TopicsFor returns the topic menu for a subject in order, or false for an
// unknown subject.
func TopicsFor(subject Subject) ([]string, bool) {
	topics, ok := topicsBySubject[subject]
	return topics, ok
}

// Selection is a finalized subject+topic pair handed to the provider.
type Selection struct {
	Subject Subject
	Topic   string
}

// SelectionState of the two-step picker.
type SelectionState int

const (
	SelectionSubjectPending SelectionState = iota
	SelectionTopicPending
	SelectionReady
)

// SelectionFlow is the two-step subject/topic picker that precedes a medical
// quiz. Each step accepts exactly one qualifying event from the owner; the
// topic menu is scoped to the subject chosen in the first step.
type SelectionFlow struct {
	OwnerID string
	State   SelectionState
	subject Subject
}

func NewSelectionFlow(ownerID string) *SelectionFlow {
	return &SelectionFlow{OwnerID: ownerID, State: SelectionSubjectPending}
}

// ChooseSubject advances the flow to topic selection and returns the topic
// menu for the chosen subject. Events from non-owners, out-of-order events,
// and unknown subjects report ok == false and change nothing.
func (f *SelectionFlow) ChooseSubject(actorID string, subject Subject) ([]string, bool) {
	if f.State != SelectionSubjectPending || actorID != f.OwnerID {
		return nil, false
	}
	topics, ok := TopicsFor(subject)
	if !ok {
		return nil, false
	}
	f.subject = subject
	f.State = SelectionTopicPending
	return topics, true
}

// ChooseTopic finalizes the selection. Topics outside the chosen subject's
// menu are rejected.
func (f *SelectionFlow) ChooseTopic(actorID, topic string) (Selection, bool) {
	if f.State != SelectionTopicPending || actorID != f.OwnerID {
		return Selection{}, false
	}
	topics, _ := TopicsFor(f.subject)
	valid := false
	for _, t := range topics {
		if t == topic {
			valid = true
			break
		}
	}
	if !valid {
		return Selection{}, false
	}
	f.State = SelectionReady
	return Selection{Subject: f.subject, Topic: topic}, true
}
