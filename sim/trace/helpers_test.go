package trace

// twoEntityRecords is the record stream of two entities at one server:
// entity 1 arrives at 0 and is served for 5, entity 2 arrives at 3 and waits 2.
func twoEntityRecords() []Record {
	return []Record{
		{RunID: "r", Station: "server", EntityID: 1, Kind: KindArrival, Timestamp: 0, SinceLastArrival: 0, QueueLength: 0, ServersBusy: 0},
		{RunID: "r", Station: "server", EntityID: 1, Kind: KindServiceStart, Timestamp: 0, ServersBusy: 1,
			Service: &ServiceTimes{Start: 0, Wait: 0}},
		{RunID: "r", Station: "server", EntityID: 2, Kind: KindArrival, Timestamp: 3, SinceLastArrival: 3, QueueLength: 1, ServersBusy: 1},
		{RunID: "r", Station: "server", EntityID: 1, Kind: KindServiceEnd, Timestamp: 5, ServersBusy: 1,
			Service: &ServiceTimes{Start: 0, End: 5, Wait: 0, Service: 5, Sojourn: 5}},
		{RunID: "r", Station: "server", EntityID: 2, Kind: KindServiceStart, Timestamp: 5, ServersBusy: 1,
			Service: &ServiceTimes{Start: 5, Wait: 2}},
		{RunID: "r", Station: "server", EntityID: 2, Kind: KindServiceEnd, Timestamp: 8, ServersBusy: 0,
			Service: &ServiceTimes{Start: 5, End: 8, Wait: 2, Service: 3, Sojourn: 5}},
	}
}

func writeAll(s Sink, records []Record) error {
	for _, r := range records {
		if err := s.Write(r); err != nil {
			return err
		}
	}
	return nil
}
