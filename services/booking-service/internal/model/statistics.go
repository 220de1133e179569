package model

import "sort"

type StatusTotals struct {
	Count        int
	RevenueCents int64
}

type ServiceTotals struct {
	Service      string
	Count        int
	RevenueCents int64
}

// Statistics summarizes a designer's appointments dated in [From, To].
type Statistics struct {
	From             Date
	To               Date
	ByStatus         map[Status]StatusTotals
	Services         []ServiceTotals
	UniqueClients    int
	ReturningClients int
}

func (s Statistics) Total() int {
	n := 0
	for _, t := range s.ByStatus {
		n += t.Count
	}
	return n
}

// BookedRevenueCents sums every appointment that was not cancelled.
func (s Statistics) BookedRevenueCents() int64 {
	var sum int64
	for status, t := range s.ByStatus {
		if status != StatusCancelled {
			sum += t.RevenueCents
		}
	}
	return sum
}

func (s Statistics) CancellationRate() float64 {
	total := s.Total()
	if total == 0 {
		return 0
	}
	return float64(s.ByStatus[StatusCancelled].Count) / float64(total)
}

// SortServices orders the breakdown by revenue, then count, then name.
func (s *Statistics) SortServices() {
	sort.Slice(s.Services, func(i, j int) bool {
		a, b := s.Services[i], s.Services[j]
		if a.RevenueCents != b.RevenueCents {
			return a.RevenueCents > b.RevenueCents
		}
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Service < b.Service
	})
}

// Client is a roster entry derived from the appointments booked under one phone number.
type Client struct {
	Name       string
	Phone      string
	Email      string
	Visits     int
	Completed  int
	Cancelled  int
	LastDate   Date
	SpentCents int64
}
