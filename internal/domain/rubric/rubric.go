// Package rubric holds the fixed competency catalog every assessment is
// scored against.
//
// The catalog is static data: ten competencies in a stable order, each with
// ten sub-competency descriptors. Nothing mutates it at runtime.
package rubric

import "fmt"

// Catalog dimensions.
const (
	Count    = 10 // competencies in the catalog
	SubCount = 10 // sub-competency checks per competency
	MaxScore = Count * SubCount
)

// CompetencyID indexes a competency in catalog order.
type CompetencyID uint8

// Competency identifiers in catalog order.
const (
	AnalyticalThinking CompetencyID = iota
	ProblemSolving
	Communication
	Collaboration
	Leadership
	BusinessAcumen
	DecisionMaking
	Creativity
	StakeholderFocus
	Professionalism
)

// Competency is one catalog entry.
type Competency struct {
	ID          CompetencyID
	Key         string
	Name        string
	Descriptors [SubCount]string
}

var catalog = [Count]Competency{
	{
		ID:   AnalyticalThinking,
		Key:  "analytical_thinking",
		Name: "Analytical Thinking",
		Descriptors: [SubCount]string{
			"Breaks the case into clear, manageable parts",
			"Identifies the data that matters and ignores noise",
			"Separates facts from assumptions",
			"Spots patterns and trends in the information given",
			"Quantifies impact where figures are available",
			"Tests hypotheses against the evidence",
			"Recognises gaps or inconsistencies in the data",
			"Draws logical, well-supported conclusions",
			"Structures reasoning so others can follow it",
			"Revisits conclusions when new information appears",
		},
	},
	{
		ID:   ProblemSolving,
		Key:  "problem_solving",
		Name: "Problem Solving",
		Descriptors: [SubCount]string{
			"Frames the core problem accurately",
			"Distinguishes root causes from symptoms",
			"Generates more than one viable option",
			"Evaluates options against explicit criteria",
			"Anticipates obstacles to implementation",
			"Proposes practical next steps",
			"Prioritises actions by impact and effort",
			"Adapts the approach when an option fails",
			"Keeps the solution within the case constraints",
			"Defines how success would be measured",
		},
	},
	{
		ID:   Communication,
		Key:  "communication",
		Name: "Communication",
		Descriptors: [SubCount]string{
			"Expresses ideas clearly and concisely",
			"Adapts language to the audience",
			"Listens actively without interrupting",
			"Asks clarifying questions when needed",
			"Summarises discussion points accurately",
			"Uses evidence to support arguments",
			"Presents conclusions with a clear structure",
			"Handles questions and challenges calmly",
			"Uses appropriate non-verbal communication",
			"Checks that the message has been understood",
		},
	},
	{
		ID:   Collaboration,
		Key:  "collaboration",
		Name: "Teamwork & Collaboration",
		Descriptors: [SubCount]string{
			"Invites contributions from quieter members",
			"Builds on other people's ideas",
			"Shares information openly with the group",
			"Accepts group decisions once agreed",
			"Offers help to teammates under pressure",
			"Handles disagreement constructively",
			"Gives credit to others' contributions",
			"Keeps the group focused on the shared goal",
			"Respects agreed roles and responsibilities",
			"Contributes a fair share of the workload",
		},
	},
	{
		ID:   Leadership,
		Key:  "leadership",
		Name: "Leadership",
		Descriptors: [SubCount]string{
			"Takes initiative to move the group forward",
			"Sets direction when the group stalls",
			"Delegates tasks according to strengths",
			"Keeps track of time and deliverables",
			"Motivates others through positive influence",
			"Takes ownership of outcomes",
			"Mediates conflicts fairly",
			"Makes space for others to lead",
			"Models the standards expected of the group",
			"Steps back when leadership is not needed",
		},
	},
	{
		ID:   BusinessAcumen,
		Key:  "business_acumen",
		Name: "Business Acumen",
		Descriptors: [SubCount]string{
			"Understands the business model in the case",
			"Links recommendations to commercial outcomes",
			"Considers costs alongside benefits",
			"Recognises market and competitive forces",
			"Identifies relevant risks and their likelihood",
			"Considers operational feasibility",
			"Interprets basic financial information correctly",
			"Weighs short-term against long-term impact",
			"Accounts for regulatory or legal constraints",
			"Aligns proposals with the organisation's strategy",
		},
	},
	{
		ID:   DecisionMaking,
		Key:  "decision_making",
		Name: "Decision Making",
		Descriptors: [SubCount]string{
			"Commits to a decision within the time available",
			"Bases decisions on the available evidence",
			"Makes trade-offs explicit",
			"Considers the consequences for all parties",
			"Balances risk against reward",
			"Avoids being paralysed by incomplete information",
			"Explains the rationale behind a decision",
			"Stands by sound decisions under challenge",
			"Changes course when evidence warrants it",
			"Identifies who must be involved in the decision",
		},
	},
	{
		ID:   Creativity,
		Key:  "creativity",
		Name: "Creativity & Innovation",
		Descriptors: [SubCount]string{
			"Challenges conventional assumptions",
			"Proposes original ideas",
			"Combines ideas from different areas",
			"Looks at the problem from several perspectives",
			"Develops rough ideas into workable proposals",
			"Is open to unconventional suggestions from others",
			"Uses analogies or examples to unlock thinking",
			"Experiments with alternative framings",
			"Balances novelty with practicality",
			"Encourages a climate where new ideas are welcome",
		},
	},
	{
		ID:   StakeholderFocus,
		Key:  "stakeholder_focus",
		Name: "Stakeholder Focus",
		Descriptors: [SubCount]string{
			"Identifies the key stakeholders in the case",
			"Understands each stakeholder's needs",
			"Anticipates stakeholder reactions",
			"Puts the customer or end user at the centre",
			"Balances competing stakeholder interests",
			"Proposes ways to communicate with stakeholders",
			"Considers the impact on employees",
			"Considers social and environmental impact",
			"Builds credibility with the audience",
			"Seeks feedback to refine proposals",
		},
	},
	{
		ID:   Professionalism,
		Key:  "professionalism",
		Name: "Professionalism",
		Descriptors: [SubCount]string{
			"Arrives prepared for the exercise",
			"Respects time limits",
			"Maintains composure under pressure",
			"Treats everyone with courtesy",
			"Acknowledges mistakes openly",
			"Acts with integrity and honesty",
			"Follows the exercise instructions",
			"Keeps a constructive attitude throughout",
			"Responds well to feedback",
			"Shows commitment to quality of work",
		},
	},
}

var byKey = func() map[string]CompetencyID {
	m := make(map[string]CompetencyID, Count)
	for _, c := range catalog {
		m[c.Key] = c.ID
	}
	return m
}()

// Catalog returns the competencies in catalog order. The result is a copy.
func Catalog() [Count]Competency {
	return catalog
}

// IDs returns every competency id in catalog order.
func IDs() []CompetencyID {
	ids := make([]CompetencyID, Count)
	for i := range ids {
		ids[i] = CompetencyID(i)
	}
	return ids
}

// Get returns the competency for id.
func Get(id CompetencyID) (Competency, error) {
	if !id.Valid() {
		return Competency{}, fmt.Errorf("%w: id %d", ErrUnknownCompetency, id)
	}
	return catalog[id], nil
}

// Lookup resolves a stable competency key.
func Lookup(key string) (CompetencyID, bool) {
	id, ok := byKey[key]
	return id, ok
}

// Valid reports whether id addresses a catalog entry.
func (id CompetencyID) Valid() bool {
	return int(id) < Count
}

// Key returns the stable key, or "" for an invalid id.
func (id CompetencyID) Key() string {
	if !id.Valid() {
		return ""
	}
	return catalog[id].Key
}

// Name returns the display name, or "" for an invalid id.
func (id CompetencyID) Name() string {
	if !id.Valid() {
		return ""
	}
	return catalog[id].Name
}

func (id CompetencyID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("competency(%d)", uint8(id))
	}
	return catalog[id].Key
}
