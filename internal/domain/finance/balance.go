package finance

import (
	"math"
	"sort"
)

const uncategorized = "outros"

// Balance is Σ income − Σ expense. Amounts are summed as whole cents so the
// result does not depend on the order of transactions.
func Balance(transactions []Transaction) float64 {
	var cents int64
	for _, t := range transactions {
		switch t.Type {
		case TypeIncome:
			cents += toCents(t.Amount)
		case TypeExpense:
			cents -= toCents(t.Amount)
		}
	}
	return fromCents(cents)
}

// Summarize totals transactions by type and by (category, type). Categories
// are listed by descending total, then name.
func Summarize(transactions []Transaction) Summary {
	type key struct{ category, kind string }
	var income, expense int64
	totals := make(map[key]int64)
	counts := make(map[key]int)

	for _, t := range transactions {
		cents := toCents(t.Amount)
		switch t.Type {
		case TypeIncome:
			income += cents
		case TypeExpense:
			expense += cents
		default:
			continue
		}
		category := uncategorized
		if t.Category != nil && *t.Category != "" {
			category = *t.Category
		}
		k := key{category: category, kind: t.Type}
		totals[k] += cents
		counts[k]++
	}

	byCategory := make([]CategoryTotal, 0, len(totals))
	for k, cents := range totals {
		byCategory = append(byCategory, CategoryTotal{
			Category: k.category,
			Type:     k.kind,
			Total:    fromCents(cents),
			Count:    counts[k],
		})
	}
	sort.Slice(byCategory, func(i, j int) bool {
		if byCategory[i].Total != byCategory[j].Total {
			return byCategory[i].Total > byCategory[j].Total
		}
		if byCategory[i].Category != byCategory[j].Category {
			return byCategory[i].Category < byCategory[j].Category
		}
		return byCategory[i].Type < byCategory[j].Type
	})

	return Summary{
		Income:     fromCents(income),
		Expense:    fromCents(expense),
		Balance:    fromCents(income - expense),
		Count:      len(transactions),
		ByCategory: byCategory,
	}
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromCents(cents int64) float64 {
	return float64(cents) / 100
}
