package model

// Wire contracts for the solve API. Problem fields follow the solver's
// canonical snake_case names; envelope fields follow the service's camelCase
// conventions.

// CoordPair is [lon, lat].
type CoordPair [2]float64

type JobIn struct {
	ID            uint64     `json:"id"`
	LocationIndex *int       `json:"location_index,omitempty"`
	Location      *CoordPair `json:"location,omitempty"`
	Service       int64      `json:"service,omitempty"`
	Amount        []int64    `json:"amount,omitempty"`
	Skills        []uint32   `json:"skills,omitempty"`
	TimeWindows   [][2]int64 `json:"time_windows,omitempty"`
}

type VehicleIn struct {
	ID         uint64     `json:"id"`
	StartIndex *int       `json:"start_index,omitempty"`
	EndIndex   *int       `json:"end_index,omitempty"`
	Start      *CoordPair `json:"start,omitempty"`
	End        *CoordPair `json:"end,omitempty"`
	Capacity   []int64    `json:"capacity,omitempty"`
	Skills     []uint32   `json:"skills,omitempty"`
	TimeWindow *[2]int64  `json:"time_window,omitempty"`
	Profile    string     `json:"profile,omitempty"`
}

type SolveOptions struct {
	ExplorationLevel *int  `json:"exploration_level,omitempty"`
	NbThreads        int   `json:"nb_threads,omitempty"`
	Geometry         bool  `json:"geometry,omitempty"`
	Seed             int64 `json:"seed,omitempty"`
	TimeBudgetMs     int   `json:"time_budget_ms,omitempty"`
}

type SolveRequest struct {
	TenantID string       `json:"tenantId,omitempty"`
	Matrix   [][]int64    `json:"matrix,omitempty"`
	Jobs     []JobIn      `json:"jobs"`
	Vehicles []VehicleIn  `json:"vehicles"`
	Options  SolveOptions `json:"options,omitempty"`
}

type StepOut struct {
	Type          string     `json:"type"`
	Job           uint64     `json:"job,omitempty"`
	LocationIndex int        `json:"location_index"`
	Location      *CoordPair `json:"location,omitempty"`
	Arrival       int64      `json:"arrival"`
	Service       int64      `json:"service,omitempty"`
	WaitingTime   int64      `json:"waiting_time,omitempty"`
	Load          []int64    `json:"load,omitempty"`
}

type RouteOut struct {
	Vehicle     uint64    `json:"vehicle"`
	Steps       []StepOut `json:"steps"`
	Cost        int64     `json:"cost"`
	Service     int64     `json:"service"`
	Duration    int64     `json:"duration"`
	WaitingTime int64     `json:"waiting_time"`
	Amount      []int64   `json:"amount,omitempty"`
	Geometry    string    `json:"geometry,omitempty"`
}

type UnassignedOut struct {
	ID     uint64 `json:"id"`
	Reason string `json:"reason"`
}

type SummaryOut struct {
	Cost        int64   `json:"cost"`
	Routed      int     `json:"routed"`
	Unassigned  int     `json:"unassigned"`
	Service     int64   `json:"service"`
	Duration    int64   `json:"duration"`
	WaitingTime int64   `json:"waiting_time"`
	Amount      []int64 `json:"amount,omitempty"`
}

type SolutionOut struct {
	Summary    SummaryOut      `json:"summary"`
	Routes     []RouteOut      `json:"routes"`
	Unassigned []UnassignedOut `json:"unassigned"`
}

type SolveResponse struct {
	SolutionID string      `json:"solutionId"`
	Solution   SolutionOut `json:"solution"`
}

// SolveBatch is a stored solve with its outcome.
type SolveBatch struct {
	ID        string       `json:"id"`
	TenantID  string       `json:"tenantId"`
	CreatedAt string       `json:"createdAt"`
	Status    string       `json:"status"`
	Jobs      int          `json:"jobs"`
	Vehicles  int          `json:"vehicles"`
	Solution  *SolutionOut `json:"solution,omitempty"`
}

type SubscriptionRequest struct {
	TenantID string   `json:"tenantId"`
	URL      string   `json:"url"`
	Events   []string `json:"events"`
	Secret   string   `json:"secret"`
}

type Subscription struct {
	ID       string   `json:"id"`
	TenantID string   `json:"tenantId"`
	URL      string   `json:"url"`
	Events   []string `json:"events"`
	Secret   string   `json:"secret,omitempty"`
}
