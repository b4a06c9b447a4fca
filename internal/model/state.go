package model

// State позиция пользователя в анкете /rent
type State int

const (
	StateNone State = iota
	StateName
	StateType
	StateDistrict
	StateBudget
	StateBedrooms
	StateCheckIn
	StateCheckOut
	StateNotes
	StateContact
	StateTransfer
	// StateComplete псевдосостояние: анкета заполнена, заявка отправлена
	StateComplete
)

// TotalQuestions количество вопросов анкеты, показывается пользователю как "n/10"
const TotalQuestions = 10

var stateNames = map[State]string{
	StateNone:     "none",
	StateName:     "name",
	StateType:     "type",
	StateDistrict: "district",
	StateBudget:   "budget",
	StateBedrooms: "bedrooms",
	StateCheckIn:  "checkin",
	StateCheckOut: "checkout",
	StateNotes:    "notes",
	StateContact:  "contact",
	StateTransfer: "transfer",
	StateComplete: "complete",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Question возвращает номер вопроса (1..10) или 0 вне анкеты
func (s State) Question() int {
	if s < StateName || s > StateTransfer {
		return 0
	}
	return int(s - StateName + 1)
}

// Active сообщает, идёт ли анкета
func (s State) Active() bool {
	return s.Question() > 0
}

// QuestionStates вопросы в порядке анкеты
func QuestionStates() []State {
	return []State{
		StateName, StateType, StateDistrict, StateBudget, StateBedrooms,
		StateCheckIn, StateCheckOut, StateNotes, StateContact, StateTransfer,
	}
}

// ParseState обратное преобразование для String()
func ParseState(name string) (State, bool) {
	for st, n := range stateNames {
		if n == name {
			return st, true
		}
	}
	return StateNone, false
}
