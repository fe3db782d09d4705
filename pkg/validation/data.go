package validation

import "sync"

// Data is the working copy of request input a validation pass reads from
// and sanitizers write to. It is safe for concurrent use.
type Data struct {
	mu      sync.RWMutex
	sources map[Location]map[string]interface{}
	request interface{}
}

// NewData copies sources into a new working set. request is handed to
// custom functions through Meta.Request.
func NewData(request interface{}, sources map[Location]map[string]interface{}) *Data {
	d := &Data{
		sources: make(map[Location]map[string]interface{}, len(sources)),
		request: request,
	}
	for loc, values := range sources {
		if values == nil {
			continue
		}
		d.sources[loc] = deepCopy(values).(map[string]interface{})
	}
	return d
}

// Request returns the request the data was built from
func (d *Data) Request() interface{} {
	return d.request
}

// Get returns a copy of the current values of loc
func (d *Data) Get(loc Location) map[string]interface{} {
	d.mu.RLock()
	defer d.mu.RUnlock()

	values, ok := d.sources[loc]
	if !ok {
		return map[string]interface{}{}
	}
	return deepCopy(values).(map[string]interface{})
}

func (d *Data) expand(loc Location, path string) []instance {
	d.mu.RLock()
	defer d.mu.RUnlock()

	found := expand(d.sources[loc], path)
	for i := range found {
		found[i].value = deepCopy(found[i].value)
	}
	return found
}

func (d *Data) set(loc Location, keys []pathKey, value interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()

	root, _ := assign(d.sources[loc], keys, value).(map[string]interface{})
	d.sources[loc] = root
}
