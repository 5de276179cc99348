package reconcile

// IndexExisting builds a lookup from identity key to target host.
// Two hosts sharing a key make the target state ambiguous, which is
// fatal for the run: reconciling against the wrong host could clobber
// monitoring configuration.
func IndexExisting(hosts []ExistingHost) (map[Key]ExistingHost, error) {
	index := make(map[Key]ExistingHost, len(hosts))
	for _, h := range hosts {
		if prev, dup := index[h.Key]; dup {
			return nil, &IndexError{Key: h.Key, FirstID: prev.TargetInternalID, SecondID: h.TargetInternalID}
		}
		index[h.Key] = h
	}
	return index, nil
}
