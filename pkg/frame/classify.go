package frame

// Classifier maps raw trace lines to frames using an ordered rule table.
// It holds no mutable state and is safe for concurrent use.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier over rules. The rules are copied; the
// caller's slice may be reused afterwards.
func NewClassifier(rules []Rule) *Classifier {
	return &Classifier{rules: append([]Rule(nil), rules...)}
}

// Rules returns a copy of the rule table in priority order.
func (c *Classifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}

// Classify returns the frame built by the first rule whose pattern matches
// the whole line. Lines no rule accepts become Unknown frames.
func (c *Classifier) Classify(line string) Frame {
	f, _ := c.Match(line)
	return f
}

// Match is Classify that also reports the name of the winning rule.
// The name is empty when the line fell through to Unknown.
func (c *Classifier) Match(line string) (Frame, string) {
	for _, r := range c.rules {
		if r.Pattern == nil || r.Build == nil {
			continue
		}
		fields, ok := matchLine(r, line)
		if !ok {
			continue
		}
		if f, ok := r.Build(fields); ok {
			return f, r.Name
		}
	}
	return &Unknown{Raw: line}, ""
}

// matchLine runs r against line and collects the named captures. Matches
// that do not cover the full line are rejected.
func matchLine(r Rule, line string) (map[string]string, bool) {
	loc := r.Pattern.FindStringSubmatchIndex(line)
	if loc == nil || loc[0] != 0 || loc[1] != len(line) {
		return nil, false
	}
	fields := make(map[string]string)
	for i, name := range r.Pattern.SubexpNames() {
		if name == "" || loc[2*i] < 0 {
			continue
		}
		fields[name] = line[loc[2*i]:loc[2*i+1]]
	}
	return fields, true
}
