package service

import (
	"sort"

	"github.com/bawantha395/tcms-app-sub004/internal/models"
)

// TransactionAggregator reduces raw transaction lists into the per-class
// rows and grand totals reconciliation reports are built from. Aggregation
// is pure and order independent: the result depends only on the multiset of
// inputs plus the final sort.
type TransactionAggregator struct {
	classifier *CardClassifier
}

// NewTransactionAggregator constructs the aggregator.
func NewTransactionAggregator(classifier *CardClassifier) *TransactionAggregator {
	if classifier == nil {
		classifier = NewCardClassifier()
	}
	return &TransactionAggregator{classifier: classifier}
}

// Aggregate groups transactions per class and computes session-wide totals.
// Only class payments and admission fees contribute; anything else is
// ignored. Admission fees add to amounts but never to card counts. The
// unique count deduplicates class-payment rows by transaction id; rows
// without an id each count individually.
func (a *TransactionAggregator) Aggregate(transactions []models.Transaction) models.AggregationResult {
	type classEntry struct {
		aggregate models.ClassAggregate
		firstSeen int
	}

	entries := make(map[string]*classEntry)
	var order []string

	totals := models.AggregateTotals{}
	seenIDs := make(map[string]struct{})

	for _, tx := range transactions {
		if tx.PaymentType != models.PaymentTypeClassPayment && tx.PaymentType != models.PaymentTypeAdmissionFee {
			continue
		}

		key := tx.ClassID
		if key == "" {
			key = tx.ClassName
		}
		entry, ok := entries[key]
		if !ok {
			entry = &classEntry{
				aggregate: models.ClassAggregate{
					ClassID:   tx.ClassID,
					ClassName: tx.ClassName,
					Teacher:   tx.Teacher,
				},
				firstSeen: len(order),
			}
			entries[key] = entry
			order = append(order, key)
		}

		entry.aggregate.TransactionCount++
		entry.aggregate.TotalAmount = entry.aggregate.TotalAmount.Add(tx.Amount)
		totals.TransactionCount++
		totals.TotalAmount = totals.TotalAmount.Add(tx.Amount)

		if tx.PaymentType == models.PaymentTypeAdmissionFee {
			entry.aggregate.AdmissionFeeAmount = entry.aggregate.AdmissionFeeAmount.Add(tx.Amount)
			totals.AdmissionFeeAmount = totals.AdmissionFeeAmount.Add(tx.Amount)
			continue
		}

		switch a.classifier.Classify(tx) {
		case models.CardTypeFree:
			entry.aggregate.FreeCount++
			totals.Cards.Free.Count++
			totals.Cards.Free.Amount = totals.Cards.Free.Amount.Add(tx.Amount)
		case models.CardTypeHalf:
			entry.aggregate.HalfCount++
			totals.Cards.Half.Count++
			totals.Cards.Half.Amount = totals.Cards.Half.Amount.Add(tx.Amount)
		default:
			entry.aggregate.FullCount++
			totals.Cards.Full.Count++
			totals.Cards.Full.Amount = totals.Cards.Full.Amount.Add(tx.Amount)
		}

		// Duplicate ids (e.g. a receipt split over two rows) count once;
		// rows with no id cannot be correlated and count individually.
		if tx.ID == "" {
			totals.UniqueTransactionCount++
		} else if _, dup := seenIDs[tx.ID]; !dup {
			seenIDs[tx.ID] = struct{}{}
			totals.UniqueTransactionCount++
		}
	}

	perClass := make([]models.ClassAggregate, 0, len(order))
	sorted := make([]*classEntry, 0, len(order))
	for _, key := range order {
		sorted = append(sorted, entries[key])
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		cmp := sorted[i].aggregate.TotalAmount.Cmp(sorted[j].aggregate.TotalAmount)
		if cmp != 0 {
			return cmp > 0
		}
		return sorted[i].firstSeen < sorted[j].firstSeen
	})
	for _, entry := range sorted {
		perClass = append(perClass, entry.aggregate)
	}

	return models.AggregationResult{PerClass: perClass, Totals: totals}
}
