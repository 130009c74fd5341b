package service

// PluralizeNoun добавляет "s" для любого количества кроме 1
func PluralizeNoun(noun string, count int) string {
	if count == 1 {
		return noun
	}
	return noun + "s"
}

// PluralizeVerb согласует глагол с числом подлежащих: "need" -> "needs" для одного
func PluralizeVerb(verb string, subjects int) string {
	if verb == "is" || verb == "are" {
		if subjects == 1 {
			return "is"
		}
		return "are"
	}
	if subjects == 1 {
		return verb + "s"
	}
	return verb
}
