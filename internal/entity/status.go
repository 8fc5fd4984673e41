package entity

import "strings"

// Status é o estágio do lead no pipeline. O conjunto é aberto: valores
// desconhecidos são aceitos e classificados como StatusCustom.
type Status string

type StatusKind int

const (
	StatusCustom StatusKind = iota
	StatusNew
	StatusOpen
	StatusFollowUp
	StatusAccepted
	StatusOverdue
	StatusRejected
	StatusClosed
	StatusInReview
	StatusHotkeyRequest
	StatusHotkeyed
	StatusCFASent
	StatusCFAReceived
	StatusNoAnswer
	StatusMoreInfoRequired
)

const DefaultStatus Status = "New"

var statusLabels = map[StatusKind]string{
	StatusNew:              "New",
	StatusOpen:             "Open",
	StatusFollowUp:         "Follow Up",
	StatusAccepted:         "Accepted",
	StatusOverdue:          "Overdue",
	StatusRejected:         "Rejected",
	StatusClosed:           "Closed",
	StatusInReview:         "In Review",
	StatusHotkeyRequest:    "Hotkey Request",
	StatusHotkeyed:         "Hotkeyed",
	StatusCFASent:          "CFA Sent",
	StatusCFAReceived:      "CFA Received",
	StatusNoAnswer:         "No Answer",
	StatusMoreInfoRequired: "More Information Required",
}

// aliases normalizados -> kind
var statusAliases = map[string]StatusKind{
	"reject":                  StatusRejected,
	"followup":                StatusFollowUp,
	"more info required":      StatusMoreInfoRequired,
	"more information needed": StatusMoreInfoRequired,
}

var statusByKey = func() map[string]StatusKind {
	m := make(map[string]StatusKind, len(statusLabels)+len(statusAliases))
	for k, label := range statusLabels {
		m[normalizeStatus(label)] = k
	}
	for alias, k := range statusAliases {
		m[alias] = k
	}
	return m
}()

func normalizeStatus(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// Kind classifica o status. Vazio conta como New.
func (s Status) Kind() StatusKind {
	key := normalizeStatus(string(s))
	if key == "" {
		return StatusNew
	}
	if k, ok := statusByKey[key]; ok {
		return k
	}
	return StatusCustom
}

func (s Status) Is(k StatusKind) bool {
	return s.Kind() == k
}

// Canonical devolve o rótulo padrão do status, ou o valor original (aparado)
// quando é um status customizado.
func (s Status) Canonical() string {
	k := s.Kind()
	if k == StatusCustom {
		return strings.TrimSpace(string(s))
	}
	return statusLabels[k]
}

func (s Status) OrDefault() Status {
	if strings.TrimSpace(string(s)) == "" {
		return DefaultStatus
	}
	return s
}

// StatusOptions lista os estágios oferecidos no formulário de lead, na ordem do pipeline.
func StatusOptions() []string {
	order := []StatusKind{
		StatusNew, StatusFollowUp, StatusOpen, StatusOverdue, StatusAccepted,
		StatusClosed, StatusRejected, StatusHotkeyRequest, StatusHotkeyed,
		StatusCFASent, StatusNoAnswer,
	}
	out := make([]string, 0, len(order))
	for _, k := range order {
		out = append(out, statusLabels[k])
	}
	return out
}
