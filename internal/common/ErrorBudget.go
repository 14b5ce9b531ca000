package common

import "sync"

// ErrorBudget counts consecutive failures and is exhausted once the count
// exceeds the tolerated maximum. Any success resets it to zero, so isolated
// transient failures never accumulate.
type ErrorBudget struct {
	mutex sync.Mutex

	max   int
	count int
}

func MakeErrorBudget(max int) *ErrorBudget {
	return &ErrorBudget{max: max}
}

// Fail records one failure and returns the running count and whether the budget is spent.
func (b *ErrorBudget) Fail() (int, bool) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.count++
	return b.count, b.count > b.max
}

func (b *ErrorBudget) Reset() {
	b.mutex.Lock()
	b.count = 0
	b.mutex.Unlock()
}

func (b *ErrorBudget) Count() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.count
}

func (b *ErrorBudget) Max() int {
	return b.max
}
