package render

import (
	"github.com/niklvrr/reviewpulse/internal/domain"
)

type TaskMetricJSON struct {
	PeriodName               string  `json:"period_name"`
	PeriodStart              int64   `json:"period_start"`
	PeriodEnd                int64   `json:"period_end"`
	NumCreated               int     `json:"num_created"`
	NumClosed                int     `json:"num_closed"`
	PointsAdded              float64 `json:"points_added"`
	PointsCompleted          float64 `json:"points_completed"`
	Ratio                    float64 `json:"ratio"`
	MeanDaysToResolution     float64 `json:"mean_days_to_resolution"`
	DaysToResolutionPerPoint float64 `json:"days_to_resolution_per_point"`
	PointsPerTask            float64 `json:"points_per_task"`
	TasksPerPoint            float64 `json:"tasks_per_point"`
}

type StatSummaryJSON struct {
	Key    string  `json:"key"`
	Name   string  `json:"name"`
	Max    float64 `json:"max"`
	Min    float64 `json:"min"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

type AggregateValueJSON struct {
	Key   string  `json:"key"`
	Name  string  `json:"name"`
	Count float64 `json:"count"`
}

type ChartDatasetJSON struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor []string  `json:"backgroundColor"`
}

// ChartJSON конфиг графика в формате chart.js
type ChartJSON struct {
	Type string `json:"type"`
	Data struct {
		Labels   []string           `json:"labels"`
		Datasets []ChartDatasetJSON `json:"datasets"`
	} `json:"data"`
}

type SegmentJSON struct {
	Key     string           `json:"key"`
	Name    string           `json:"name"`
	Metrics []TaskMetricJSON `json:"metrics"`
	Chart   ChartJSON        `json:"chart"`
}

type AggregateJSON struct {
	Metric   TaskMetricJSON       `json:"metric"`
	Stats    []AggregateValueJSON `json:"stats"`
	Segments []SegmentJSON        `json:"segments"`
}

type MetricsJSON struct {
	Kind      string            `json:"kind"`
	Name      string            `json:"name"`
	Interval  string            `json:"interval"`
	Metrics   []TaskMetricJSON  `json:"metrics"`
	Stats     []StatSummaryJSON `json:"stats"`
	Aggregate AggregateJSON     `json:"aggregate"`
}

func TaskMetricToJSON(m domain.TaskMetric) TaskMetricJSON {
	return TaskMetricJSON{
		PeriodName:               m.PeriodName,
		PeriodStart:              m.PeriodStart.Unix(),
		PeriodEnd:                m.PeriodEnd.Unix(),
		NumCreated:               m.NumCreated(),
		NumClosed:                m.NumClosed(),
		PointsAdded:              m.PointsAdded(),
		PointsCompleted:          m.PointsCompleted(),
		Ratio:                    m.Ratio(),
		MeanDaysToResolution:     m.MeanDaysToResolution(),
		DaysToResolutionPerPoint: m.DaysToResolutionPerPoint(),
		PointsPerTask:            m.PointsPerTask(),
		TasksPerPoint:            m.TasksPerPoint(),
	}
}

func ChartToJSON(series domain.ChartSeries) ChartJSON {
	var chart ChartJSON
	chart.Type = series.Type
	chart.Data.Labels = nonNil(series.Labels)
	chart.Data.Datasets = make([]ChartDatasetJSON, 0, len(series.Datasets))
	for _, ds := range series.Datasets {
		chart.Data.Datasets = append(chart.Data.Datasets, ChartDatasetJSON{
			Label:           ds.Label,
			Data:            nonNilFloats(ds.Data),
			BackgroundColor: nonNil(ds.BackgroundColor),
		})
	}
	return chart
}

// MetricsToJSON сериализуемое представление результата агрегатора
func MetricsToJSON(result *domain.MetricsResult) MetricsJSON {
	out := MetricsJSON{
		Kind:     result.Kind.Slug,
		Name:     result.Kind.Name,
		Interval: string(result.Interval),
		Metrics:  metricsToJSON(result.Metrics),
		Stats:    make([]StatSummaryJSON, 0, len(result.Stats)),
	}

	for _, stat := range result.Stats {
		out.Stats = append(out.Stats, StatSummaryJSON{
			Key:    stat.Key,
			Name:   stat.Name,
			Max:    stat.Max,
			Min:    stat.Min,
			Mean:   stat.Mean,
			Median: stat.Median,
		})
	}

	out.Aggregate = AggregateJSON{
		Metric:   TaskMetricToJSON(result.Aggregate.Metric),
		Stats:    make([]AggregateValueJSON, 0, len(result.Aggregate.Stats)),
		Segments: make([]SegmentJSON, 0, len(result.Aggregate.Segments)),
	}
	for _, value := range result.Aggregate.Stats {
		out.Aggregate.Stats = append(out.Aggregate.Stats, AggregateValueJSON{
			Key:   value.Key,
			Name:  value.Name,
			Count: value.Count,
		})
	}
	for _, segment := range result.Aggregate.Segments {
		out.Aggregate.Segments = append(out.Aggregate.Segments, SegmentJSON{
			Key:     string(segment.Key),
			Name:    segment.Name,
			Metrics: metricsToJSON(segment.Metrics),
			Chart:   ChartToJSON(segment.Chart),
		})
	}

	return out
}

func metricsToJSON(metrics []domain.TaskMetric) []TaskMetricJSON {
	out := make([]TaskMetricJSON, 0, len(metrics))
	for _, m := range metrics {
		out = append(out, TaskMetricToJSON(m))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilFloats(s []float64) []float64 {
	if s == nil {
		return []float64{}
	}
	return s
}
