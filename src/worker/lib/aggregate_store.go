package worker

// AggregateStore is the worker-owned table of running aggregates keyed
// by date. It replaces ambient global state: the owning coordinator
// creates it and hands aggregates into accumulator calls explicitly.
type AggregateStore struct {
	aggregates map[string]*DateAggregate
}

func NewAggregateStore() *AggregateStore {
	return &AggregateStore{
		aggregates: make(map[string]*DateAggregate),
	}
}

func (s *AggregateStore) Get(date string) (*DateAggregate, bool) {
	aggregate, exists := s.aggregates[date]
	return aggregate, exists
}

func (s *AggregateStore) Put(aggregate *DateAggregate) {
	s.aggregates[aggregate.Date] = aggregate
}

func (s *AggregateStore) Len() int {
	return len(s.aggregates)
}
