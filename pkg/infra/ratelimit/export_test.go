package ratelimit

const SlidingWindowScript = slidingWindowScript
