package model

// StatusBreakdown counts tasks per status.
type StatusBreakdown struct {
	Pending    int `json:"PENDING"`
	InProgress int `json:"IN_PROGRESS"`
	Completed  int `json:"COMPLETED"`
}

// PriorityBreakdown counts tasks per priority.
type PriorityBreakdown struct {
	Low    int `json:"LOW"`
	Medium int `json:"MEDIUM"`
	High   int `json:"HIGH"`
	Urgent int `json:"URGENT"`
}

// DailyActivity is one day of the trailing-week series. Completed counts tasks
// created that day whose current status is COMPLETED.
type DailyActivity struct {
	Day       string `json:"day"`
	Date      string `json:"date"`
	Created   int    `json:"created"`
	Completed int    `json:"completed"`
}

// Analytics is the dashboard summary of one user's tasks.
type Analytics struct {
	Total             int               `json:"total"`
	StatusBreakdown   StatusBreakdown   `json:"statusBreakdown"`
	PriorityBreakdown PriorityBreakdown `json:"priorityBreakdown"`
	Daily             []DailyActivity   `json:"daily"`
	Overdue           int               `json:"overdue"`
	CompletionRate    int               `json:"completionRate"`
}
