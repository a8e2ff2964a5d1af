package export

// Progress receives advisory updates while content files are written. It
// never affects the outcome of an export.
type Progress interface {
	// Start is called once the metadata index is written, with the number
	// of content files to fetch.
	Start(total int)

	// Advance is called after each content file, whether or not it succeeded.
	Advance(fileName string)

	// Finish is called when no more content files will be fetched.
	Finish()
}

// NopProgress discards progress updates.
type NopProgress struct{}

func (NopProgress) Start(int)      {}
func (NopProgress) Advance(string) {}
func (NopProgress) Finish()        {}
