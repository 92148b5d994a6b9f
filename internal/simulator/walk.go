// Package simulator содержит синтетический генератор метрик социальной сети:
// ограниченное случайное блуждание, скользящую историю фиксированной длины
// и расписание тиков сессии.
package simulator

// Rand — источник случайных чисел, необходимый симулятору.
//
// *math/rand.Rand удовлетворяет этому интерфейсу.
type Rand interface {
	Int63n(n int64) int64
	Float64() float64
}

// Advance выполняет один шаг ограниченного случайного блуждания.
//
// Приращение выбирается равномерно из [0, maxDelta). С вероятностью 0.5 значение
// растёт на приращение, иначе уменьшается, но не опускается ниже нуля.
// Верхней границы нет.
//
// previous — предыдущее значение (отрицательное трактуется как 0).
// maxDelta — верхняя (не включительно) граница приращения; при maxDelta <= 0
// значение не меняется.
func Advance(rng Rand, previous, maxDelta int64) int64 {
	if previous < 0 {
		previous = 0
	}
	if maxDelta <= 0 {
		return previous
	}

	delta := rng.Int63n(maxDelta)
	if rng.Float64() > 0.5 {
		return previous + delta
	}
	if delta > previous {
		return 0
	}
	return previous - delta
}
