package domain

import "time"

type Interval string

const (
	IntervalWeek    Interval = "week"
	IntervalMonth   Interval = "month"
	IntervalQuarter Interval = "quarter"
)

var Intervals = []Interval{IntervalWeek, IntervalMonth, IntervalQuarter}

const DefaultInterval = IntervalWeek

// Days ширина корзины в днях; для неизвестного интервала 0
func (i Interval) Days() int {
	switch i {
	case IntervalWeek:
		return 7
	case IntervalMonth:
		return 30
	case IntervalQuarter:
		return 90
	default:
		return 0
	}
}

// Period полуинтервал [Start, End)
type Period struct {
	Name  string
	Start time.Time
	End   time.Time
}

// MetricKind вид метрики и подтипы задач, которые она учитывает
type MetricKind struct {
	Slug        string
	Name        string
	Description string
	Subtypes    []TaskSubtype
}

var MetricKinds = []MetricKind{
	{
		Slug:        "alltasks",
		Name:        "AllTasks",
		Description: "Tracks all tasks (any subtype) opened vs closed over time.",
		Subtypes:    AllTaskSubtypes,
	},
	{
		Slug:        "bugs",
		Name:        "Bugs",
		Description: "Tracks bugs opened vs closed over time.",
		Subtypes:    []TaskSubtype{TaskSubtypeBug},
	},
	{
		Slug:        "features",
		Name:        "Features",
		Description: "Tracks features opened vs closed over time.",
		Subtypes:    []TaskSubtype{TaskSubtypeFeature},
	},
	{
		Slug:        "stories",
		Name:        "Stories",
		Description: "Tracks stories opened vs closed over time.",
		Subtypes:    []TaskSubtype{TaskSubtypeStory},
	},
	{
		Slug:        "tasks",
		Name:        "Tasks",
		Description: "Tracks tasks opened vs closed over time.",
		Subtypes:    []TaskSubtype{TaskSubtypeDefault},
	},
}

func MetricKindBySlug(slug string) (MetricKind, bool) {
	for _, kind := range MetricKinds {
		if kind.Slug == slug {
			return kind, true
		}
	}
	return MetricKind{}, false
}

// TaskMetric корзина периода с созданными и закрытыми в ней задачами.
// Все показатели считаются из списков задач при каждом обращении.
type TaskMetric struct {
	PeriodName   string
	PeriodStart  time.Time
	PeriodEnd    time.Time
	TasksCreated []Task
	TasksClosed  []Task
}

func (m TaskMetric) NumCreated() int {
	return len(m.TasksCreated)
}

func (m TaskMetric) NumClosed() int {
	return len(m.TasksClosed)
}

func (m TaskMetric) PointsAdded() float64 {
	return sumPoints(m.TasksCreated)
}

func (m TaskMetric) PointsCompleted() float64 {
	return sumPoints(m.TasksClosed)
}

// Ratio закрытые / созданные; 1, если ничего не создано
func (m TaskMetric) Ratio() float64 {
	if m.NumCreated() == 0 {
		return 1
	}
	return float64(m.NumClosed()) / float64(m.NumCreated())
}

func (m TaskMetric) MeanDaysToResolution() float64 {
	if m.NumClosed() == 0 {
		return 0
	}
	return m.totalDaysToResolution() / float64(m.NumClosed())
}

func (m TaskMetric) PointsPerTask() float64 {
	return m.PointsCompleted() / atLeastOne(float64(m.NumClosed()))
}

func (m TaskMetric) TasksPerPoint() float64 {
	return float64(m.NumClosed()) / atLeastOne(m.PointsCompleted())
}

func (m TaskMetric) DaysToResolutionPerPoint() float64 {
	return m.totalDaysToResolution() / atLeastOne(m.PointsCompleted())
}

func (m TaskMetric) totalDaysToResolution() float64 {
	total := 0.0
	for _, task := range m.TasksClosed {
		total += task.DaysToResolution()
	}
	return total
}

func sumPoints(tasks []Task) float64 {
	total := 0.0
	for _, task := range tasks {
		total += task.Points
	}
	return total
}

func atLeastOne(v float64) float64 {
	if v < 1 {
		return 1
	}
	return v
}

// StatAttribute показатель корзины, по которому строится сводная статистика
type StatAttribute struct {
	Key   string
	Name  string
	Value func(TaskMetric) float64
}

var StatAttributes = []StatAttribute{
	{Key: "points_completed", Name: "Story Points Completed", Value: TaskMetric.PointsCompleted},
	{Key: "points_added", Name: "Story Points Added", Value: TaskMetric.PointsAdded},
	{Key: "num_closed", Name: "Tasks Closed", Value: func(m TaskMetric) float64 { return float64(m.NumClosed()) }},
	{Key: "num_created", Name: "Tasks Created", Value: func(m TaskMetric) float64 { return float64(m.NumCreated()) }},
	{Key: "ratio", Name: "Task Open vs Closed Ratio", Value: TaskMetric.Ratio},
	{Key: "mean_days_to_resolution", Name: "Average Days to Resolution", Value: TaskMetric.MeanDaysToResolution},
	{Key: "days_to_resolution_per_point", Name: "Days to Resolution per Story Point", Value: TaskMetric.DaysToResolutionPerPoint},
	{Key: "points_per_task", Name: "Story Points per Task", Value: TaskMetric.PointsPerTask},
	{Key: "tasks_per_point", Name: "Tasks per Discrete Story Point", Value: TaskMetric.TasksPerPoint},
}

// StatSummary max/min/mean/median показателя по всем корзинам окна
type StatSummary struct {
	Key    string
	Name   string
	Max    float64
	Min    float64
	Mean   float64
	Median float64
}

// AggregateValue значение показателя для синтетической корзины всего окна
type AggregateValue struct {
	Key   string
	Name  string
	Count float64
}

type ChartDataset struct {
	Label           string
	Data            []float64
	BackgroundColor []string
}

// ChartSeries готовые для графика подписи и параллельные ряды значений
type ChartSeries struct {
	Type     string
	Labels   []string
	Datasets []ChartDataset
}

type SegmentKey string

const (
	SegmentByCustomer SegmentKey = "tasks_by_customer"
	SegmentByOwner    SegmentKey = "tasks_by_owner_author"
	SegmentByService  SegmentKey = "tasks_by_service"
)

// Segment разбивка закрытых за окно задач по клиенту, исполнителю или сервису
type Segment struct {
	Key     SegmentKey
	Name    string
	Metrics []TaskMetric
	Chart   ChartSeries
}

type AggregatedStats struct {
	Metric   TaskMetric
	Stats    []AggregateValue
	Segments []Segment
}

type MetricsResult struct {
	Kind      MetricKind
	Interval  Interval
	Metrics   []TaskMetric // от старых периодов к новым
	Stats     []StatSummary
	Aggregate AggregatedStats
}

// Stat ищет сводку по ключу показателя
func (r MetricsResult) Stat(key string) (StatSummary, bool) {
	for _, stat := range r.Stats {
		if stat.Key == key {
			return stat, true
		}
	}
	return StatSummary{}, false
}

func (a AggregatedStats) Segment(key SegmentKey) (Segment, bool) {
	for _, segment := range a.Segments {
		if segment.Key == key {
			return segment, true
		}
	}
	return Segment{}, false
}
