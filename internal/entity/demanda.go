package entity

type DemandaStatus string

const (
	StatusPending DemandaStatus = "pending"
	StatusDone    DemandaStatus = "done"
)

// Assignee - дополнительный исполнитель деманды. Для фильтрации
// используется только Id.
type Assignee struct {
	ID    int    `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Demanda - одна строка таблицы demandas. Поля WeekDays и Assignees
// хранятся в БД как JSON-текст, но наружу всегда отдаются списками.
type Demanda struct {
	ID             int           `json:"id"`
	EmployeeID     int           `json:"employeeId"`
	EmployeeName   string        `json:"employeeName"`
	EmployeeEmail  string        `json:"employeeEmail"`
	Category       string        `json:"category"`
	Priority       string        `json:"priority"`
	Complexity     string        `json:"complexity"`
	Description    string        `json:"description"`
	Location       string        `json:"location"`
	Tag            string        `json:"tag"`
	CreatedAt      string        `json:"createdAt"`
	DueDate        string        `json:"dueDate"`
	Status         DemandaStatus `json:"status"`
	IsRecurring    bool          `json:"isRecurring"`
	WeekDays       []string      `json:"weekDays"`
	Assignees      []Assignee    `json:"assignees"`
	Comments       string        `json:"comments"`
	ManagerComment string        `json:"managerComment"`
	CompletedAt    *string       `json:"completedAt"`
}

type CreateDemandaRequest struct {
	EmployeeID     int           `json:"employeeId"`
	EmployeeName   string        `json:"employeeName"`
	EmployeeEmail  string        `json:"employeeEmail"`
	Category       string        `json:"category"`
	Priority       string        `json:"priority"`
	Complexity     string        `json:"complexity"`
	Description    string        `json:"description"`
	Location       string        `json:"location"`
	Tag            string        `json:"tag"`
	CreatedAt      string        `json:"createdAt"`
	DueDate        string        `json:"dueDate"`
	Status         DemandaStatus `json:"status"`
	IsRecurring    bool          `json:"isRecurring"`
	WeekDays       []string      `json:"weekDays"`
	Assignees      []Assignee    `json:"assignees"`
	Comments       string        `json:"comments"`
	ManagerComment string        `json:"managerComment"`
}

// UpdateDemandaRequest - полная перезапись строки, не merge:
// каждая колонка переписывается переданным значением.
type UpdateDemandaRequest struct {
	EmployeeID     int           `json:"employeeId"`
	EmployeeName   string        `json:"employeeName"`
	EmployeeEmail  string        `json:"employeeEmail"`
	Category       string        `json:"category"`
	Priority       string        `json:"priority"`
	Complexity     string        `json:"complexity"`
	Description    string        `json:"description"`
	Location       string        `json:"location"`
	Tag            string        `json:"tag"`
	CreatedAt      string        `json:"createdAt"`
	DueDate        string        `json:"dueDate"`
	Status         DemandaStatus `json:"status"`
	IsRecurring    bool          `json:"isRecurring"`
	WeekDays       []string      `json:"weekDays"`
	Assignees      []Assignee    `json:"assignees"`
	Comments       string        `json:"comments"`
	ManagerComment string        `json:"managerComment"`
	CompletedAt    *string       `json:"completedAt"`
}

// DemandaStats - количество демандов по каждому статусу плюс total.
type DemandaStats map[string]int
