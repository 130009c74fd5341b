package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/niklvrr/reviewpulse/internal/domain"
)

const (
	AggregatedPeriodName = "Aggregated"
	chartTypeDoughnut    = "doughnut"

	// MaxPeriods верхняя граница числа корзин: десять лет недельных отчетов
	MaxPeriods = 520
)

// Палитра сегментных графиков, цвет выбирается по позиции подписи
var SegmentPalette = []string{
	"#55efc4", "#81ecec", "#74b9ff", "#a29bfe", "#00b894",
	"#00cec9", "#0984e3", "#6c5ce7", "#b2bec3", "#ffeaa7",
	"#fab1a0", "#ff7675", "#fd79a8", "#636e72", "#fdcb6e",
	"#e17055", "#d63031", "#e84393", "#2d3436", "#1abc9c",
	"#16a085", "#f1c40f", "#f39c12", "#2ecc71", "#27ae60",
	"#e67e22", "#d35400", "#3498db", "#2980b9",
}

// BuildPeriods нарезает [start, end) на корзины шириной интервала, двигаясь назад от end.
// Корзины идут от новых к старым; последняя обрезается по start.
func BuildPeriods(interval domain.Interval, start, end time.Time) ([]domain.Period, error) {
	days := interval.Days()
	if days == 0 {
		return nil, WrapError(ErrInvalidInput, fmt.Errorf("unknown interval %q", interval))
	}
	if !start.Before(end) {
		return nil, ErrInvalidRange
	}

	var periods []domain.Period
	for cursor := end; cursor.After(start); {
		if len(periods) == MaxPeriods {
			return nil, WrapError(ErrInvalidInput,
				fmt.Errorf("window spans more than %d %s buckets", MaxPeriods, interval))
		}
		from := cursor.AddDate(0, 0, -days)
		if from.Before(start) {
			from = start
		}
		periods = append(periods, domain.Period{
			Name:  PeriodName(from, cursor),
			Start: from,
			End:   cursor,
		})
		cursor = from
	}

	return periods, nil
}

func PeriodName(start, end time.Time) string {
	return fmt.Sprintf("%s to %s", start.Format(PeriodNameLayout), end.Format(PeriodNameLayout))
}

// ComputeStats max/min/mean/median каждого показателя по всем корзинам
func ComputeStats(metrics []domain.TaskMetric) []domain.StatSummary {
	stats := make([]domain.StatSummary, 0, len(domain.StatAttributes))
	for _, attr := range domain.StatAttributes {
		values := make([]float64, 0, len(metrics))
		for _, metric := range metrics {
			values = append(values, attr.Value(metric))
		}

		summary := domain.StatSummary{Key: attr.Key, Name: attr.Name}
		if len(values) > 0 {
			summary.Max, summary.Min = maxMin(values)
			summary.Mean = mean(values)
			summary.Median = median(values)
		}
		stats = append(stats, summary)
	}
	return stats
}

// SegmentLookups справочники для подписей сегментов
type SegmentLookups struct {
	Projects domain.ProjectLookup
	// Usernames PHID владельца -> username
	Usernames map[string]string
}

// Aggregate строит синтетическую корзину на все окно из объединения задач всех корзин.
// metrics ожидаются от старых к новым.
func Aggregate(metrics []domain.TaskMetric, lookups SegmentLookups) domain.AggregatedStats {
	if len(metrics) == 0 {
		return domain.AggregatedStats{Metric: domain.TaskMetric{PeriodName: AggregatedPeriodName}}
	}

	var created, closed []domain.Task
	for _, metric := range metrics {
		created = append(created, metric.TasksCreated...)
		closed = append(closed, metric.TasksClosed...)
	}

	start := metrics[0].PeriodStart
	end := metrics[len(metrics)-1].PeriodEnd

	aggregate := domain.TaskMetric{
		PeriodName:   AggregatedPeriodName,
		PeriodStart:  start,
		PeriodEnd:    end,
		TasksCreated: created,
		TasksClosed:  closed,
	}

	values := make([]domain.AggregateValue, 0, len(domain.StatAttributes))
	for _, attr := range domain.StatAttributes {
		values = append(values, domain.AggregateValue{
			Key:   attr.Key,
			Name:  attr.Name,
			Count: attr.Value(aggregate),
		})
	}

	return domain.AggregatedStats{
		Metric: aggregate,
		Stats:  values,
		Segments: []domain.Segment{
			buildSegment(domain.SegmentByCustomer, "Tasks by Customer", aggregate, func(t domain.Task) (string, bool) {
				return orDefault(customerName(t, lookups.Projects)), true
			}),
			buildSegment(domain.SegmentByOwner, "Tasks by Owner/Author", aggregate, func(t domain.Task) (string, bool) {
				if !t.IsAssigned() {
					return "", false
				}
				if username, ok := lookups.Usernames[t.OwnerPHID]; ok && username != "" {
					return username, true
				}
				return domain.NotAvailable, true
			}),
			buildSegment(domain.SegmentByService, "Tasks by Service", aggregate, func(t domain.Task) (string, bool) {
				return orDefault(serviceName(t, lookups.Projects)), true
			}),
		},
	}
}

// buildSegment группирует закрытые задачи окна по метке в порядке первого появления
func buildSegment(key domain.SegmentKey, name string, window domain.TaskMetric, label func(domain.Task) (string, bool)) domain.Segment {
	var labels []string
	groups := make(map[string][]domain.Task)
	for _, task := range window.TasksClosed {
		l, ok := label(task)
		if !ok {
			continue
		}
		if _, seen := groups[l]; !seen {
			labels = append(labels, l)
		}
		groups[l] = append(groups[l], task)
	}

	metrics := make([]domain.TaskMetric, 0, len(labels))
	for _, l := range labels {
		metrics = append(metrics, domain.TaskMetric{
			PeriodName:   l,
			PeriodStart:  window.PeriodStart,
			PeriodEnd:    window.PeriodEnd,
			TasksCreated: []domain.Task{},
			TasksClosed:  groups[l],
		})
	}

	return domain.Segment{
		Key:     key,
		Name:    name,
		Metrics: metrics,
		Chart:   segmentChart(metrics),
	}
}

func segmentChart(metrics []domain.TaskMetric) domain.ChartSeries {
	labels := make([]string, 0, len(metrics))
	points := make([]float64, 0, len(metrics))
	closed := make([]float64, 0, len(metrics))
	colors := make([]string, 0, len(metrics))

	for i, metric := range metrics {
		labels = append(labels, metric.PeriodName)
		points = append(points, metric.PointsCompleted())
		closed = append(closed, float64(metric.NumClosed()))
		colors = append(colors, SegmentPalette[i%len(SegmentPalette)])
	}

	return domain.ChartSeries{
		Type:   chartTypeDoughnut,
		Labels: labels,
		Datasets: []domain.ChartDataset{
			{Label: "Points completed", Data: points, BackgroundColor: colors},
			{Label: "Tickets Closed", Data: closed, BackgroundColor: colors},
		},
	}
}

func customerName(t domain.Task, lookup domain.ProjectLookup) string {
	if lookup == nil {
		return ""
	}
	return t.CustomerName(lookup)
}

func serviceName(t domain.Task, lookup domain.ProjectLookup) string {
	if lookup == nil {
		return ""
	}
	return t.ServiceName(lookup)
}

func orDefault(name string) string {
	if name == "" {
		return domain.DefaultSegmentName
	}
	return name
}

func maxMin(values []float64) (float64, float64) {
	hi, lo := values[0], values[0]
	for _, v := range values[1:] {
		if v > hi {
			hi = v
		}
		if v < lo {
			lo = v
		}
	}
	return hi, lo
}

func mean(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

// median с усреднением двух центральных значений для четной длины
func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
