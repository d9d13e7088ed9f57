package spider

// Storage is implemented by every record sink of a crawl run.
type Storage interface {
	/*
	   Append adds one assembled record to the end of the sink. It never
	   overwrites earlier records and accepts duplicates.
	*/
	Append(rec *Record) error
	/*
	   Save commits everything appended so far to durable storage. It may be
	   called many times, including from the interrupt path while a crawl is
	   still appending.
	*/
	Save() error
}
